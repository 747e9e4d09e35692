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

	"github.com/zeebo/xxh3"

	"github.com/neuroph12/CompAktor/address"
)

const maxShards = 64

type shard struct {
	sync.RWMutex
	m map[address.Address]*PID
}

// pidMap is a concurrent Address to PID map sharded by the xxh3 hash of the canonical address
type pidMap []*shard

func newPIDMap() pidMap {
	numShards := min(runtime.NumCPU()*4, maxShards)
	shards := make([]*shard, numShards)
	for i := range numShards {
		shards[i] = &shard{m: make(map[address.Address]*PID)}
	}
	return shards
}

func (s pidMap) Load(addr address.Address) (*PID, bool) {
	shard := s.getShard(addr)
	shard.RLock()
	pid, ok := shard.m[addr]
	shard.RUnlock()
	return pid, ok
}

func (s pidMap) Store(addr address.Address, pid *PID) {
	shard := s.getShard(addr)
	shard.Lock()
	shard.m[addr] = pid
	shard.Unlock()
}

func (s pidMap) Delete(addr address.Address) {
	shard := s.getShard(addr)
	shard.Lock()
	delete(shard.m, addr)
	shard.Unlock()
}

func (s pidMap) Len() int {
	var size int
	for _, shard := range s {
		shard.RLock()
		size += len(shard.m)
		shard.RUnlock()
	}
	return size
}

func (s pidMap) Values() []*PID {
	out := make([]*PID, 0, s.Len())
	for _, shard := range s {
		shard.RLock()
		for _, pid := range shard.m {
			out = append(out, pid)
		}
		shard.RUnlock()
	}
	return out
}

func (s pidMap) getShard(addr address.Address) *shard {
	return s[xxh3.HashString(addr.String())%uint64(len(s))]
}
