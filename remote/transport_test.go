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

package remote

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travisjeffery/go-dynaport"
	"go.uber.org/goleak"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/neuroph12/CompAktor/address"
	"github.com/neuroph12/CompAktor/errors"
	"github.com/neuroph12/CompAktor/internal/pause"
	"github.com/neuroph12/CompAktor/log"
	"github.com/neuroph12/CompAktor/message"
)

func newTestTransport(t *testing.T, opts ...Option) (*Transport, int) {
	t.Helper()
	port := dynaport.Get(1)[0]
	opts = append(opts, WithLogger(log.DiscardLogger))
	transport, err := NewTransport(NewConfig("127.0.0.1", port, opts...))
	require.NoError(t, err)
	return transport, port
}

func TestTransport(t *testing.T) {
	for _, compression := range []Compression{NoCompression, ZstdCompression, BrotliCompression} {
		t.Run("With "+compression.String()+" compression", func(t *testing.T) {
			defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
			ctx := context.Background()

			server, port := newTestTransport(t, WithCompression(compression))
			received := make(chan message.Message, 10)
			require.NoError(t, server.Listen(ctx, func(_ context.Context, msg message.Message) {
				received <- msg
			}))

			client, _ := newTestTransport(t, WithCompression(compression))

			target := address.New("127.0.0.1", port, "worker")
			sender := address.New("127.0.0.1", 1, "caller")
			for i := range 3 {
				msg, err := message.NewApplication(wrapperspb.Int32(int32(i)), target, sender)
				require.NoError(t, err)
				require.NoError(t, client.Send(ctx, msg))
			}

			for i := range 3 {
				select {
				case msg := <-received:
					app, ok := msg.(*message.Application)
					require.True(t, ok)
					assert.Equal(t, target, app.Target())
					assert.Equal(t, sender, app.Sender())
					payload, ok := app.Payload.(proto.Message)
					require.True(t, ok)
					assert.True(t, proto.Equal(wrapperspb.Int32(int32(i)), payload))
				case <-time.After(5 * time.Second):
					t.Fatalf("message %d not received", i)
				}
			}

			require.NoError(t, client.Close(ctx))
			require.NoError(t, server.Close(ctx))
		})
	}
}

func TestTransportSecurity(t *testing.T) {
	ctx := context.Background()
	security, err := NewAllowList("10.255.0.0/16")
	require.NoError(t, err)

	server, port := newTestTransport(t, WithCompression(NoCompression), WithSecurity(security))
	received := make(chan message.Message, 1)
	require.NoError(t, server.Listen(ctx, func(_ context.Context, msg message.Message) {
		received <- msg
	}))

	client, _ := newTestTransport(t, WithCompression(NoCompression))
	msg, err := message.NewStopActor(address.New("127.0.0.1", port, "worker"), address.NoSender())
	require.NoError(t, err)
	_ = client.Send(ctx, msg)

	pause.For(200 * time.Millisecond)
	assert.Empty(t, received)

	require.NoError(t, client.Close(ctx))
	require.NoError(t, server.Close(ctx))
}

func TestTransportUnreachable(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestTransport(t, WithDialRetries(1), WithDialTimeout(200*time.Millisecond))

	port := dynaport.Get(1)[0]
	msg, err := message.NewStopActor(address.New("127.0.0.1", port, "worker"), address.NoSender())
	require.NoError(t, err)

	err = client.Send(ctx, msg)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrTransport)

	var transportErr *errors.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, address.New("127.0.0.1", port, "x").HostPort(), transportErr.Target)
	require.NoError(t, client.Close(ctx))

	err = client.Send(ctx, msg)
	assert.ErrorIs(t, err, errors.ErrTransport)
}

func TestTransportNonProtoPayload(t *testing.T) {
	ctx := context.Background()
	client, port := newTestTransport(t)
	msg, err := message.NewApplication("plain string", address.New("127.0.0.1", port, "worker"), address.NoSender())
	require.NoError(t, err)

	err = client.Send(ctx, msg)
	assert.ErrorIs(t, err, errors.ErrTransport)
	require.NoError(t, client.Close(ctx))
}

func TestTransportInboundAfterClose(t *testing.T) {
	ctx := context.Background()
	transport, _ := newTestTransport(t)

	before, beforePeer := net.Pipe()
	require.True(t, transport.track(before))
	require.NoError(t, transport.Close(ctx))

	_, err := beforePeer.Read(make([]byte, 1))
	assert.ErrorIs(t, err, io.EOF)

	late, latePeer := net.Pipe()
	assert.False(t, transport.track(late))
	_, err = latePeer.Read(make([]byte, 1))
	assert.ErrorIs(t, err, io.EOF)

	transport.mu.Lock()
	assert.Len(t, transport.inbound, 1)
	transport.mu.Unlock()
}
