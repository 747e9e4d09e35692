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

package convention

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/neuroph12/CompAktor/address"
	"github.com/neuroph12/CompAktor/log"
	"github.com/neuroph12/CompAktor/message"
)

type testProvider struct {
	events chan Event
	self   address.Address
	once   sync.Once
}

var _ Provider = (*testProvider)(nil)

func newTestProvider() *testProvider {
	return &testProvider{events: make(chan Event, 10)}
}

func (p *testProvider) ID() string { return "test" }
func (p *testProvider) Start(_ context.Context, self address.Address) error {
	p.self = self
	return nil
}
func (p *testProvider) Watch() <-chan Event { return p.events }
func (p *testProvider) Stop(context.Context) error {
	p.once.Do(func() { close(p.events) })
	return nil
}

type recorder struct {
	mu       sync.Mutex
	messages []message.Message
}

func (r *recorder) Tell(_ context.Context, msg message.Message) error {
	r.mu.Lock()
	r.messages = append(r.messages, msg)
	r.mu.Unlock()
	return nil
}

func (r *recorder) variants() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.messages))
	for _, msg := range r.messages {
		out = append(out, msg.Variant())
	}
	return out
}

func (r *recorder) last() message.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.messages[len(r.messages)-1]
}

func TestCoordinator(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx := context.Background()
	self := address.New("127.0.0.2", 9000, address.SystemPath)
	lower := address.New("127.0.0.1", 9000, address.SystemPath)
	higher := address.New("127.0.0.3", 9000, address.SystemPath)

	provider := newTestProvider()
	sender := new(recorder)
	coordinator := NewCoordinator(provider, sender, log.DiscardLogger)

	require.NoError(t, coordinator.Start(ctx, self))
	assert.Equal(t, self, provider.self)
	assert.Equal(t, self, coordinator.Leader())
	assert.Equal(t, []string{"SetConventionLeader"}, sender.variants())

	announce, ok := sender.last().(*message.SetConventionLeader)
	require.True(t, ok)
	assert.Equal(t, self, announce.ActorAddress)
	assert.Equal(t, self, announce.Target())
	assert.True(t, announce.Sender().IsNoSender())

	provider.events <- Event{Type: MemberJoined, Member: higher}
	require.Eventually(t, func() bool { return len(sender.variants()) == 2 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, "RegisterRemoteSystem", sender.last().Variant())
	assert.Equal(t, self, coordinator.Leader())

	provider.events <- Event{Type: MemberJoined, Member: higher}
	provider.events <- Event{Type: MemberJoined, Member: self}
	provider.events <- Event{Type: MemberLeft, Member: lower}
	provider.events <- Event{Type: MemberJoined, Member: lower}
	require.Eventually(t, func() bool { return len(sender.variants()) == 4 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"SetConventionLeader", "RegisterRemoteSystem", "RegisterRemoteSystem", "SetConventionLeader"}, sender.variants())
	assert.Equal(t, lower, coordinator.Leader())
	assert.ElementsMatch(t, []address.Address{lower, higher}, coordinator.Members())

	provider.events <- Event{Type: MemberLeft, Member: lower}
	require.Eventually(t, func() bool { return len(sender.variants()) == 6 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, "UnRegisterRemoteSystem", sender.variants()[4])
	assert.Equal(t, self, coordinator.Leader())

	require.NoError(t, coordinator.Stop(ctx))
}

func TestEventType(t *testing.T) {
	assert.Equal(t, "MemberJoined", MemberJoined.String())
	assert.Equal(t, "MemberLeft", MemberLeft.String())
	assert.Equal(t, "Unknown", EventType(42).String())
}
