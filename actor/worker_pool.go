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
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// DefaultMaxThreads caps the number of dispatch loops running at the same time
const DefaultMaxThreads = 1000

// workerPool multiplexes dispatch loops onto a bounded number of goroutines
type workerPool struct {
	sem *semaphore.Weighted
	wg  sync.WaitGroup
}

func newWorkerPool(size int64) *workerPool {
	if size <= 0 {
		size = DefaultMaxThreads
	}
	return &workerPool{sem: semaphore.NewWeighted(size)}
}

// submit runs fn once a slot is free. It never blocks the caller.
func (p *workerPool) submit(fn func()) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		if err := p.sem.Acquire(context.Background(), 1); err != nil {
			return
		}
		defer p.sem.Release(1)
		fn()
	}()
}

// wait blocks until every submitted task returns
func (p *workerPool) wait() {
	p.wg.Wait()
}
