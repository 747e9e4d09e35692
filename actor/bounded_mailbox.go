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
	gods "github.com/Workiva/go-datastructures/queue"

	"github.com/neuroph12/CompAktor/errors"
	"github.com/neuroph12/CompAktor/message"
)

// BoundedMailbox is a fixed capacity MPSC mailbox backed by a ring buffer.
//
// Enqueue never blocks: when the mailbox is full the message is rejected with
// errors.ErrMailboxFull.
type BoundedMailbox struct {
	underlying *gods.RingBuffer
}

// enforce compilation error
var _ Mailbox = (*BoundedMailbox)(nil)

// NewBoundedMailbox creates a bounded mailbox. Capacity is rounded up to a
// power of two by the ring buffer.
func NewBoundedMailbox(capacity int) *BoundedMailbox {
	return &BoundedMailbox{
		underlying: gods.NewRingBuffer(uint64(capacity)),
	}
}

// Enqueue offers the message to the mailbox
func (mailbox *BoundedMailbox) Enqueue(msg message.Message) error {
	ok, err := mailbox.underlying.Offer(msg)
	if err != nil {
		return errors.ErrMailboxDisposed
	}
	if !ok {
		return errors.ErrMailboxFull
	}
	return nil
}

// Dequeue returns the next message or nil when empty
func (mailbox *BoundedMailbox) Dequeue() message.Message {
	if mailbox.underlying.IsDisposed() || mailbox.underlying.Len() == 0 {
		return nil
	}
	item, err := mailbox.underlying.Get()
	if err != nil {
		return nil
	}
	msg, _ := item.(message.Message)
	return msg
}

// IsEmpty reports whether the mailbox currently has no messages
func (mailbox *BoundedMailbox) IsEmpty() bool {
	return mailbox.underlying.IsDisposed() || mailbox.underlying.Len() == 0
}

// Len returns the current number of messages in the mailbox
func (mailbox *BoundedMailbox) Len() int64 {
	return int64(mailbox.underlying.Len())
}

// Dispose releases the ring buffer
func (mailbox *BoundedMailbox) Dispose() {
	mailbox.underlying.Dispose()
}
