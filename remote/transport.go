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
	"crypto/tls"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/flowchartsman/retry"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/atomic"
	"go.uber.org/multierr"

	"github.com/neuroph12/CompAktor/errors"
	"github.com/neuroph12/CompAktor/internal/tcp"
	"github.com/neuroph12/CompAktor/internal/wire"
	"github.com/neuroph12/CompAktor/log"
	"github.com/neuroph12/CompAktor/message"
)

// Transport moves wire encoded messages over TCP.
//
// Every frame is a 4-byte big-endian length followed by the encoded message.
// Inbound connections pass the Security gate, then the optional TLS and
// compression layers. Messages read from one connection are delivered in order.
type Transport struct {
	config  *Config
	logger  log.Logger
	wrapper tcp.ConnWrapper

	listener net.Listener
	handler  func(context.Context, message.Message)

	mu      sync.Mutex
	clients map[string]*client
	inbound map[net.Conn]struct{}

	closed *atomic.Bool
	wg     sync.WaitGroup
}

// client is a pooled outbound connection
type client struct {
	mu   sync.Mutex
	conn net.Conn
}

// NewTransport creates a TCP transport
func NewTransport(config *Config) (*Transport, error) {
	if err := config.Sanitize(); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	var wrapper tcp.ConnWrapper
	switch config.compression {
	case ZstdCompression:
		zstdWrapper, err := tcp.NewZstdConnWrapper(zstd.SpeedDefault)
		if err != nil {
			return nil, err
		}
		wrapper = zstdWrapper
	case BrotliCompression:
		wrapper = tcp.NewBrotliConnWrapper(5)
	}

	return &Transport{
		config:  config,
		logger:  config.logger,
		wrapper: wrapper,
		clients: make(map[string]*client),
		inbound: make(map[net.Conn]struct{}),
		closed:  atomic.NewBool(false),
	}, nil
}

// Address returns the listening address, or the configured one before Listen
func (t *Transport) Address() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.listener != nil {
		return t.listener.Addr().String()
	}
	return t.config.HostPort()
}

// Listen starts accepting connections and delivers every decoded message to handler
func (t *Transport) Listen(ctx context.Context, handler func(context.Context, message.Message)) error {
	listenConfig := net.ListenConfig{KeepAlive: t.config.keepAlive}
	listener, err := listenConfig.Listen(ctx, "tcp", t.config.HostPort())
	if err != nil {
		return err
	}

	if t.config.serverTLS != nil {
		listener = tls.NewListener(listener, t.config.serverTLS)
	}

	t.mu.Lock()
	t.listener = listener
	t.handler = handler
	t.mu.Unlock()

	t.wg.Add(1)
	go t.accept(context.WithoutCancel(ctx))
	t.logger.Infof("transport listening on %s (compression=%s)", listener.Addr(), t.config.compression)
	return nil
}

func (t *Transport) accept(ctx context.Context) {
	defer t.wg.Done()
	for {
		conn, err := t.listener.Accept()
		if err != nil {
			if t.closed.Load() || stderrors.Is(err, net.ErrClosed) {
				return
			}
			t.logger.Warnf("failed to accept connection: %v", err)
			continue
		}

		if err := t.config.security.Admit(conn); err != nil {
			t.logger.Warnf("connection from %s rejected: %v", conn.RemoteAddr(), err)
			_ = conn.Close()
			continue
		}

		wrapped, err := t.wrap(conn)
		if err != nil {
			t.logger.Warnf("failed to wrap connection from %s: %v", conn.RemoteAddr(), err)
			_ = conn.Close()
			continue
		}

		if !t.track(wrapped) {
			return
		}

		t.wg.Add(1)
		go t.serve(ctx, wrapped)
	}
}

// track registers an inbound connection. It closes the connection and
// returns false once the transport is closed.
func (t *Transport) track(conn net.Conn) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed.Load() {
		_ = conn.Close()
		return false
	}
	t.inbound[conn] = struct{}{}
	return true
}

// serve reads frames from a connection until it closes
func (t *Transport) serve(ctx context.Context, conn net.Conn) {
	defer t.wg.Done()
	defer func() {
		t.mu.Lock()
		delete(t.inbound, conn)
		t.mu.Unlock()
		_ = conn.Close()
	}()

	for {
		payload, err := tcp.ReadFrame(conn, t.config.maxFrameSize)
		if err != nil {
			if !t.closed.Load() && !stderrors.Is(err, io.EOF) && !stderrors.Is(err, net.ErrClosed) {
				t.logger.Warnf("failed to read frame from %s: %v", conn.RemoteAddr(), err)
			}
			return
		}

		msg, err := wire.Unmarshal(payload)
		if err != nil {
			t.logger.Warnf("dropping malformed frame from %s: %v", conn.RemoteAddr(), err)
			continue
		}
		t.handler(ctx, msg)
	}
}

// Send delivers msg to the actor system hosting its target
func (t *Transport) Send(ctx context.Context, msg message.Message) error {
	endpoint := msg.Target().HostPort()
	if t.closed.Load() {
		return errors.NewTransportError(endpoint, net.ErrClosed)
	}

	payload, err := wire.Marshal(msg)
	if err != nil {
		return errors.NewTransportError(endpoint, err)
	}

	c, err := t.client(ctx, endpoint)
	if err != nil {
		return errors.NewTransportError(endpoint, err)
	}

	if err := c.write(payload, t.config.maxFrameSize, t.config.writeTimeout); err != nil {
		t.evict(endpoint, c)
		return errors.NewTransportError(endpoint, err)
	}
	return nil
}

// client returns the pooled connection to endpoint, dialing it when missing
func (t *Transport) client(ctx context.Context, endpoint string) (*client, error) {
	t.mu.Lock()
	if c, ok := t.clients[endpoint]; ok {
		t.mu.Unlock()
		return c, nil
	}
	t.mu.Unlock()

	var conn net.Conn
	retrier := retry.NewRetrier(t.config.dialRetries, 10*time.Millisecond, t.config.dialTimeout)
	err := retrier.RunContext(ctx, func(ctx context.Context) error {
		var err error
		conn, err = t.dial(ctx, endpoint)
		return err
	})
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if existing, ok := t.clients[endpoint]; ok {
		_ = conn.Close()
		return existing, nil
	}
	c := &client{conn: conn}
	t.clients[endpoint] = c
	return c, nil
}

func (t *Transport) dial(ctx context.Context, endpoint string) (net.Conn, error) {
	dialer := &net.Dialer{Timeout: t.config.dialTimeout, KeepAlive: t.config.keepAlive}
	conn, err := dialer.DialContext(ctx, "tcp", endpoint)
	if err != nil {
		return nil, err
	}

	if t.config.clientTLS != nil {
		tlsConn := tls.Client(conn, t.config.clientTLS)
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			_ = conn.Close()
			return nil, err
		}
		conn = tlsConn
	}

	if t.wrapper == nil {
		return conn, nil
	}

	wrapped, err := t.wrapper.Wrap(conn)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return wrapped, nil
}

func (t *Transport) wrap(conn net.Conn) (net.Conn, error) {
	if t.wrapper == nil {
		return conn, nil
	}
	return t.wrapper.Wrap(conn)
}

func (t *Transport) evict(endpoint string, c *client) {
	t.mu.Lock()
	if current, ok := t.clients[endpoint]; ok && current == c {
		delete(t.clients, endpoint)
	}
	t.mu.Unlock()
	_ = c.conn.Close()
}

func (c *client) write(payload []byte, maxFrameSize int, timeout time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if timeout > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
			return err
		}
	}
	return tcp.WriteFrame(c.conn, payload, maxFrameSize)
}

// Close stops the listener and closes every connection
func (t *Transport) Close(ctx context.Context) error {
	if !t.closed.CompareAndSwap(false, true) {
		return nil
	}

	var err error
	t.mu.Lock()
	if t.listener != nil {
		err = multierr.Append(err, t.listener.Close())
	}
	for endpoint, c := range t.clients {
		_ = c.conn.Close()
		delete(t.clients, endpoint)
	}
	for conn := range t.inbound {
		_ = conn.Close()
	}
	t.mu.Unlock()

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		err = multierr.Append(err, fmt.Errorf("transport did not close: %w", ctx.Err()))
	}
	return err
}
