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

package mdns

import (
	"context"
	"testing"
	"time"

	"github.com/grandcat/zeroconf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neuroph12/CompAktor/address"
	"github.com/neuroph12/CompAktor/convention"
	"github.com/neuroph12/CompAktor/internal/pause"
	"github.com/neuroph12/CompAktor/log"
)

func TestConfig(t *testing.T) {
	config := Config{ServiceName: "node-1", Service: DefaultService, Domain: DefaultDomain}
	require.NoError(t, config.Validate())

	assert.Error(t, Config{Service: DefaultService, Domain: DefaultDomain}.Validate())
	assert.Error(t, Config{ServiceName: "node-1", Domain: DefaultDomain}.Validate())
	assert.Error(t, Config{ServiceName: "node-1", Service: DefaultService}.Validate())
}

func TestMemberOf(t *testing.T) {
	member, ok := memberOf([]string{"version=1", "addr=compaktor://127.0.0.1:9001/user-1"})
	require.True(t, ok)
	assert.Equal(t, address.New("127.0.0.1", 9001, address.SystemPath), member)

	_, ok = memberOf([]string{"version=1"})
	assert.False(t, ok)

	_, ok = memberOf([]string{"addr=not-an-address"})
	assert.False(t, ok)
}

func TestProvider(t *testing.T) {
	t.Run("With invalid config", func(t *testing.T) {
		provider := NewProvider(Config{}, log.DiscardLogger)
		assert.Equal(t, "mdns", provider.ID())
		assert.Error(t, provider.Start(context.Background(), address.New("127.0.0.1", 9000, address.SystemPath)))
		require.NoError(t, provider.Stop(context.Background()))
		_, open := <-provider.Watch()
		assert.False(t, open)
	})
	t.Run("With browsed entries", func(t *testing.T) {
		provider := NewProvider(Config{ServiceName: "node-1", Service: DefaultService, Domain: DefaultDomain}, log.DiscardLogger)
		provider.self = address.New("127.0.0.1", 9000, address.SystemPath)

		entry := func(addr string, ttl uint32) *zeroconf.ServiceEntry {
			e := zeroconf.NewServiceEntry("node", DefaultService, DefaultDomain)
			e.Text = []string{addressKey + addr}
			e.TTL = ttl
			return e
		}

		entries := make(chan *zeroconf.ServiceEntry, 8)
		entries <- entry("compaktor://127.0.0.1:9000/system", 120)
		entries <- entry("compaktor://127.0.0.1:9001/system", 120)
		entries <- entry("compaktor://127.0.0.1:9001/system", 120)
		entries <- entry("compaktor://127.0.0.1:9002/system", 120)
		entries <- entry("compaktor://127.0.0.1:9001/system", 0)
		entries <- entry("compaktor://127.0.0.1:9003/system", 0)
		close(entries)

		provider.browsed.Add(1)
		provider.listen(entries)
		require.NoError(t, provider.Stop(context.Background()))

		var events []convention.Event
		for event := range provider.Watch() {
			events = append(events, event)
		}

		peer1 := address.New("127.0.0.1", 9001, address.SystemPath)
		peer2 := address.New("127.0.0.1", 9002, address.SystemPath)
		assert.Equal(t, []convention.Event{
			{Type: convention.MemberJoined, Member: peer1},
			{Type: convention.MemberJoined, Member: peer2},
			{Type: convention.MemberLeft, Member: peer1},
		}, events)
	})
	t.Run("With slow consumer", func(t *testing.T) {
		provider := NewProvider(Config{ServiceName: "node-1", Service: DefaultService, Domain: DefaultDomain}, log.DiscardLogger)
		provider.self = address.New("127.0.0.1", 9000, address.SystemPath)
		provider.events = make(chan convention.Event, 1)

		entries := make(chan *zeroconf.ServiceEntry, 3)
		for _, port := range []int{9001, 9002, 9003} {
			e := zeroconf.NewServiceEntry("node", DefaultService, DefaultDomain)
			e.Text = []string{addressKey + address.New("127.0.0.1", port, "system").String()}
			e.TTL = 120
			entries <- e
		}
		close(entries)

		provider.browsed.Add(1)
		go provider.listen(entries)
		pause.For(1500 * time.Millisecond)

		for _, port := range []int{9001, 9002, 9003} {
			event := <-provider.Watch()
			assert.Equal(t, convention.MemberJoined, event.Type)
			assert.Equal(t, port, event.Member.Port())
		}
		require.NoError(t, provider.Stop(context.Background()))
	})
}
