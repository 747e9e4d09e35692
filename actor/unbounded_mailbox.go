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
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/neuroph12/CompAktor/errors"
	"github.com/neuroph12/CompAktor/message"
)

type node struct {
	value atomic.Pointer[message.Message]
	next  unsafe.Pointer
}

var nodePool = sync.Pool{New: func() any { return new(node) }}

// UnboundedMailbox is a lock-free multi-producer, single-consumer FIFO queue.
//
// Many goroutines may Enqueue concurrently while exactly one goroutine Dequeues.
// The zero value is not usable; construct it with NewUnboundedMailbox.
//
// Reference: https://concurrencyfreaks.blogspot.com/2014/04/multi-producer-single-consumer-queue.html
type UnboundedMailbox struct {
	head     unsafe.Pointer // *node
	_        [64]byte
	tail     unsafe.Pointer // *node
	_        [64]byte
	length   atomic.Int64
	disposed atomic.Bool
}

// enforces compilation error
var _ Mailbox = (*UnboundedMailbox)(nil)

// NewUnboundedMailbox returns a new, initialized UnboundedMailbox.
func NewUnboundedMailbox() *UnboundedMailbox {
	item := new(node)
	return &UnboundedMailbox{
		head: unsafe.Pointer(item),
		tail: unsafe.Pointer(item),
	}
}

// Enqueue appends the message to the tail of the mailbox
func (m *UnboundedMailbox) Enqueue(msg message.Message) error {
	if m.disposed.Load() {
		return errors.ErrMailboxDisposed
	}

	tnode := nodePool.Get().(*node)
	tnode.value.Store(&msg)
	atomic.StorePointer(&tnode.next, nil)
	m.length.Add(1)

	prev := (*node)(atomic.SwapPointer(&m.tail, unsafe.Pointer(tnode)))
	atomic.StorePointer(&prev.next, unsafe.Pointer(tnode))
	return nil
}

// Dequeue removes and returns the message at the head of the mailbox
func (m *UnboundedMailbox) Dequeue() message.Message {
	if m.disposed.Load() {
		return nil
	}

	head := (*node)(atomic.LoadPointer(&m.head))
	next := (*node)(atomic.LoadPointer(&head.next))
	if next == nil {
		return nil
	}

	atomic.StorePointer(&m.head, unsafe.Pointer(next))
	value := next.value.Load()
	next.value.Store(nil)

	nodePool.Put(head)
	m.length.Add(-1)
	if value == nil {
		return nil
	}
	return *value
}

// Len returns the number of pending messages
func (m *UnboundedMailbox) Len() int64 {
	return m.length.Load()
}

// IsEmpty reports whether the mailbox holds no message
func (m *UnboundedMailbox) IsEmpty() bool {
	if m.disposed.Load() {
		return true
	}
	head := (*node)(atomic.LoadPointer(&m.head))
	return atomic.LoadPointer(&head.next) == nil
}

// Dispose rejects every later Enqueue. Pending messages are dropped.
func (m *UnboundedMailbox) Dispose() {
	m.disposed.Store(true)
}
