/*
 * MIT License
 *
 * Copyright (c) 2022-2025 Arsene Tochemey Gandote
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package actor

import (
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neuroph12/CompAktor/address"
	"github.com/neuroph12/CompAktor/errors"
	"github.com/neuroph12/CompAktor/message"
)

func newTestMessage(t *testing.T, payload any) message.Message {
	t.Helper()
	msg, err := message.NewApplication(payload, address.New("127.0.0.1", 0, "test"), address.NoSender())
	require.NoError(t, err)
	return msg
}

func TestUnboundedMailbox(t *testing.T) {
	t.Run("With FIFO order", func(t *testing.T) {
		mailbox := NewUnboundedMailbox()
		in1 := newTestMessage(t, 1)
		in2 := newTestMessage(t, 2)

		require.NoError(t, mailbox.Enqueue(in1))
		require.NoError(t, mailbox.Enqueue(in2))
		assert.EqualValues(t, 2, mailbox.Len())
		assert.False(t, mailbox.IsEmpty())

		assert.Equal(t, in1, mailbox.Dequeue())
		assert.Equal(t, in2, mailbox.Dequeue())
		assert.True(t, mailbox.IsEmpty())
		assert.Zero(t, mailbox.Len())
		assert.Nil(t, mailbox.Dequeue())
	})
	t.Run("With multiple producers", func(t *testing.T) {
		producers := 4
		perProducer := 250
		expected := producers * perProducer
		mailbox := NewUnboundedMailbox()

		var consumerWg sync.WaitGroup
		consumerWg.Add(1)
		go func() {
			defer consumerWg.Done()
			for count := 0; count < expected; {
				if mailbox.Dequeue() == nil {
					runtime.Gosched()
					continue
				}
				count++
			}
		}()

		var producersWg sync.WaitGroup
		producersWg.Add(producers)
		for range producers {
			go func() {
				defer producersWg.Done()
				for i := range perProducer {
					_ = mailbox.Enqueue(newTestMessage(t, i))
				}
			}()
		}

		producersWg.Wait()
		consumerWg.Wait()
		assert.True(t, mailbox.IsEmpty())
	})
	t.Run("With dispose", func(t *testing.T) {
		mailbox := NewUnboundedMailbox()
		require.NoError(t, mailbox.Enqueue(newTestMessage(t, 1)))
		mailbox.Dispose()

		assert.True(t, mailbox.IsEmpty())
		assert.Nil(t, mailbox.Dequeue())
		assert.ErrorIs(t, mailbox.Enqueue(newTestMessage(t, 2)), errors.ErrMailboxDisposed)
	})
}

func TestBoundedMailbox(t *testing.T) {
	t.Run("With FIFO order", func(t *testing.T) {
		mailbox := NewBoundedMailbox(4)
		in1 := newTestMessage(t, 1)
		in2 := newTestMessage(t, 2)

		require.NoError(t, mailbox.Enqueue(in1))
		require.NoError(t, mailbox.Enqueue(in2))
		assert.EqualValues(t, 2, mailbox.Len())

		assert.Equal(t, in1, mailbox.Dequeue())
		assert.Equal(t, in2, mailbox.Dequeue())
		assert.True(t, mailbox.IsEmpty())
		assert.Nil(t, mailbox.Dequeue())
		mailbox.Dispose()
	})
	t.Run("With full mailbox", func(t *testing.T) {
		mailbox := NewBoundedMailbox(2)
		require.NoError(t, mailbox.Enqueue(newTestMessage(t, 1)))
		require.NoError(t, mailbox.Enqueue(newTestMessage(t, 2)))
		assert.ErrorIs(t, mailbox.Enqueue(newTestMessage(t, 3)), errors.ErrMailboxFull)

		require.NotNil(t, mailbox.Dequeue())
		require.NoError(t, mailbox.Enqueue(newTestMessage(t, 3)))
		mailbox.Dispose()
	})
	t.Run("With dispose", func(t *testing.T) {
		mailbox := NewBoundedMailbox(2)
		mailbox.Dispose()
		assert.True(t, mailbox.IsEmpty())
		assert.Nil(t, mailbox.Dequeue())
		assert.ErrorIs(t, mailbox.Enqueue(newTestMessage(t, 1)), errors.ErrMailboxDisposed)
	})
	t.Run("With capacity selection", func(t *testing.T) {
		assert.IsType(t, &UnboundedMailbox{}, newMailbox(0))
		assert.IsType(t, &BoundedMailbox{}, newMailbox(8))
	})
}
