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
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"github.com/neuroph12/CompAktor/address"
	"github.com/neuroph12/CompAktor/log"
	"github.com/neuroph12/CompAktor/message"
)

const (
	eventuallyWait = 5 * time.Second
	eventuallyTick = 10 * time.Millisecond
)

// counter counts the application messages it receives.
// Its zero value is usable so that it can be created by kind.
type counter struct {
	received *atomic.Int64
	stopped  *atomic.Bool
}

var _ Actor = (*counter)(nil)

func (c *counter) PreStart(context.Context) error {
	if c.received == nil {
		c.received = atomic.NewInt64(0)
	}
	if c.stopped == nil {
		c.stopped = atomic.NewBool(false)
	}
	return nil
}

func (c *counter) Receive(ctx *ReceiveContext) {
	switch ctx.Message().(type) {
	case string:
		c.received.Inc()
	case int:
		panic(fmt.Sprintf("cannot handle %d", ctx.Message()))
	default:
		ctx.Unhandled()
	}
}

func (c *counter) PostStop(context.Context) error {
	c.stopped.Store(true)
	return nil
}

func (c *counter) count() int64 {
	return c.received.Load()
}

type delivery struct {
	payload any
	sender  address.Address
}

// recorder forwards every payload it receives to a channel
type recorder struct {
	deliveries chan delivery
}

var _ Actor = (*recorder)(nil)

func newRecorder() *recorder {
	return &recorder{deliveries: make(chan delivery, 100)}
}

func (p *recorder) PreStart(context.Context) error { return nil }
func (p *recorder) Receive(ctx *ReceiveContext) {
	p.deliveries <- delivery{payload: ctx.Message(), sender: ctx.Sender()}
}
func (p *recorder) PostStop(context.Context) error { return nil }

func (p *recorder) expect(t *testing.T) delivery {
	t.Helper()
	select {
	case d := <-p.deliveries:
		return d
	case <-time.After(eventuallyWait):
		t.Fatal("no message received")
		return delivery{}
	}
}

// forwarder relays string payloads to a target with an exclamation mark
type forwarder struct {
	target address.Address
}

var _ Actor = (*forwarder)(nil)

func (f *forwarder) PreStart(context.Context) error { return nil }
func (f *forwarder) Receive(ctx *ReceiveContext) {
	payload, ok := ctx.Message().(string)
	if !ok {
		ctx.Unhandled()
		return
	}
	if err := ctx.Tell(f.target, payload+"!"); err != nil {
		ctx.Err(err)
	}
}
func (f *forwarder) PostStop(context.Context) error { return nil }

// blocker holds its dispatch loop until released
type blocker struct {
	entered chan struct{}
	release chan struct{}
}

var _ Actor = (*blocker)(nil)

func (b *blocker) PreStart(context.Context) error { return nil }
func (b *blocker) Receive(*ReceiveContext) {
	b.entered <- struct{}{}
	<-b.release
}
func (b *blocker) PostStop(context.Context) error { return nil }

// failing never completes PreStart
type failing struct {
	attempts *atomic.Int32
}

var _ Actor = (*failing)(nil)

func (f *failing) PreStart(context.Context) error {
	f.attempts.Inc()
	return errors.New("boom")
}
func (f *failing) Receive(*ReceiveContext)        {}
func (f *failing) PostStop(context.Context) error { return nil }

// panicking panics on every message
type panicking struct{}

var _ Actor = (*panicking)(nil)

func (panicking) PreStart(context.Context) error { return nil }
func (panicking) Receive(*ReceiveContext)        { panic("receive panicked") }
func (panicking) PostStop(context.Context) error { return nil }

func newTestSystem(t *testing.T, opts ...Option) *ActorSystem {
	t.Helper()
	opts = append([]Option{WithLogger(log.DiscardLogger)}, opts...)
	system, err := NewActorSystem("testSys", opts...)
	require.NoError(t, err)
	require.NoError(t, system.Start(context.Background()))
	t.Cleanup(func() {
		if system.Running() {
			_ = system.Stop(context.Background())
		}
	})
	return system
}

func spawnRunning(t *testing.T, system *ActorSystem, actor Actor, parent address.Address) *PID {
	t.Helper()
	addr, err := system.Spawn(context.Background(), actor, parent)
	require.NoError(t, err)
	pid, ok := system.Lookup(addr)
	require.True(t, ok)
	require.Eventually(t, pid.IsRunning, eventuallyWait, eventuallyTick)
	return pid
}

func tell(t *testing.T, system *ActorSystem, payload any, target address.Address) {
	t.Helper()
	msg, err := message.NewApplication(payload, target, address.NoSender())
	require.NoError(t, err)
	require.NoError(t, system.Tell(context.Background(), msg))
}

// logBuffer collects the JSON entries written by a zap logger.
// Dispatch loops write concurrently so every access is serialized.
type logBuffer struct {
	mu     sync.Mutex
	buffer bytes.Buffer
}

type logEntry struct {
	Level   string `json:"level"`
	Msg     string `json:"msg"`
	Variant string `json:"variant"`
	Target  string `json:"target"`
	Error   string `json:"error"`
}

func (b *logBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buffer.Write(p)
}

// find returns the first entry logged for the given variant and target
func (b *logBuffer) find(variant string, target address.Address) (logEntry, bool) {
	b.mu.Lock()
	lines := strings.Split(strings.TrimSpace(b.buffer.String()), "\n")
	b.mu.Unlock()

	for _, line := range lines {
		var e logEntry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			continue
		}
		if e.Variant == variant && e.Target == target.String() {
			return e, true
		}
	}
	return logEntry{}, false
}

func newLogBuffer() (*logBuffer, log.Logger) {
	buffer := new(logBuffer)
	return buffer, log.NewZap(log.InfoLevel, buffer)
}
