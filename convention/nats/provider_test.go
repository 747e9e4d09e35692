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

package nats

import (
	"context"
	"fmt"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neuroph12/CompAktor/address"
	"github.com/neuroph12/CompAktor/convention"
	"github.com/neuroph12/CompAktor/internal/pause"
	"github.com/neuroph12/CompAktor/log"
)

func startNatsServer(t *testing.T) *natsserver.Server {
	t.Helper()
	serv, err := natsserver.NewServer(&natsserver.Options{
		Host: "127.0.0.1",
		Port: -1,
	})

	require.NoError(t, err)

	ready := make(chan bool)
	go func() {
		ready <- true
		serv.Start()
	}()
	<-ready

	if !serv.ReadyForConnections(2 * time.Second) {
		t.Fatalf("nats-io server failed to start")
	}

	return serv
}

func newProvider(serverAddr string) *Provider {
	return NewProvider(Config{
		NatsServer:  fmt.Sprintf("nats://%s", serverAddr),
		NatsSubject: "compaktor-systems",
	}, WithLogger(log.DiscardLogger))
}

func nextEvent(t *testing.T, provider *Provider) convention.Event {
	t.Helper()
	select {
	case event := <-provider.Watch():
		return event
	case <-time.After(5 * time.Second):
		t.Fatal("no membership event received")
		return convention.Event{}
	}
}

func TestConfig(t *testing.T) {
	require.NoError(t, Config{NatsServer: "nats://127.0.0.1:4222", NatsSubject: "subject"}.Validate())
	assert.Error(t, Config{NatsSubject: "subject"}.Validate())
	assert.Error(t, Config{NatsServer: "nats://127.0.0.1:4222"}.Validate())
	assert.Error(t, Config{NatsServer: "nats://127.0.0.1:4222", NatsSubject: "subject", Timeout: -time.Second}.Validate())

	config := Config{}.withDefaults()
	assert.Equal(t, 2*time.Second, config.Timeout)
	assert.Equal(t, 5, config.MaxConnectAttempts)
}

func TestProvider(t *testing.T) {
	t.Run("With announcements", func(t *testing.T) {
		ctx := context.Background()
		srv := startNatsServer(t)
		defer srv.Shutdown()

		firstSystem := address.New("127.0.0.1", 9001, address.SystemPath)
		secondSystem := address.New("127.0.0.1", 9002, address.SystemPath)

		first := newProvider(srv.Addr().String())
		assert.Equal(t, "nats", first.ID())
		require.NoError(t, first.Start(ctx, firstSystem))

		second := newProvider(srv.Addr().String())
		require.NoError(t, second.Start(ctx, secondSystem))

		joined := nextEvent(t, first)
		assert.Equal(t, convention.MemberJoined, joined.Type)
		assert.Equal(t, secondSystem, joined.Member)

		joined = nextEvent(t, second)
		assert.Equal(t, convention.MemberJoined, joined.Type)
		assert.Equal(t, firstSystem, joined.Member)

		require.NoError(t, second.Stop(ctx))
		left := nextEvent(t, first)
		assert.Equal(t, convention.MemberLeft, left.Type)
		assert.Equal(t, secondSystem, left.Member)

		require.NoError(t, first.Stop(ctx))
		require.NoError(t, first.Stop(ctx))
		_, open := <-first.Watch()
		assert.False(t, open)
	})
	t.Run("With invalid config", func(t *testing.T) {
		provider := NewProvider(Config{}, WithLogger(log.DiscardLogger))
		assert.Error(t, provider.Start(context.Background(), address.New("127.0.0.1", 9001, address.SystemPath)))
	})
	t.Run("With unreachable server", func(t *testing.T) {
		provider := NewProvider(Config{
			NatsServer:         "nats://127.0.0.1:1",
			NatsSubject:        "compaktor-systems",
			Timeout:            100 * time.Millisecond,
			MaxConnectAttempts: 2,
		}, WithLogger(log.DiscardLogger))
		assert.Error(t, provider.Start(context.Background(), address.New("127.0.0.1", 9001, address.SystemPath)))
	})
	t.Run("With slow consumer", func(t *testing.T) {
		provider := NewProvider(Config{}, WithLogger(log.DiscardLogger))
		provider.events = make(chan convention.Event, 1)
		peer := address.New("127.0.0.1", 9002, address.SystemPath)

		done := make(chan struct{})
		go func() {
			defer close(done)
			provider.emit(convention.Event{Type: convention.MemberJoined, Member: peer})
			provider.emit(convention.Event{Type: convention.MemberLeft, Member: peer})
			provider.emit(convention.Event{Type: convention.MemberJoined, Member: peer})
		}()

		pause.For(1500 * time.Millisecond)
		for _, eventType := range []convention.EventType{convention.MemberJoined, convention.MemberLeft, convention.MemberJoined} {
			event := nextEvent(t, provider)
			assert.Equal(t, eventType, event.Type)
		}
		<-done

		blocked := make(chan struct{})
		provider.events <- convention.Event{}
		go func() {
			defer close(blocked)
			provider.emit(convention.Event{Type: convention.MemberLeft, Member: peer})
		}()
		close(provider.stopCh)
		<-blocked
	})
}
