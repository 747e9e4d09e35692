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

package gossip

import (
	"github.com/hashicorp/memberlist"

	"github.com/neuroph12/CompAktor/address"
	"github.com/neuroph12/CompAktor/internal/wire"
)

// delegate advertises the actor system Address as node meta
type delegate struct {
	meta []byte
}

// enforce compilation error
var _ memberlist.Delegate = (*delegate)(nil)

func newDelegate(self address.Address) *delegate {
	return &delegate{meta: wire.MarshalAddress(self)}
}

// NodeMeta is used to retrieve meta-data about the current node
// when broadcasting an alive message.
func (d *delegate) NodeMeta(limit int) []byte {
	if len(d.meta) > limit {
		return nil
	}
	return d.meta
}

// nolint
func (d *delegate) NotifyMsg([]byte) {}

// nolint
func (d *delegate) GetBroadcasts(overhead, limit int) [][]byte { return nil }

// nolint
func (d *delegate) LocalState(join bool) []byte { return nil }

// nolint
func (d *delegate) MergeRemoteState(buf []byte, join bool) {}
