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

// Package nats discovers remote actor systems through a NATS subject.
//
// At start an actor system publishes a RegisterRemoteSystem announcement with a
// reply inbox. Every peer records the announcer and replies with its own
// RegisterRemoteSystem. At stop an UnRegisterRemoteSystem is published.
// All messages use the wire encoding of the remoting layer.
package nats

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/flowchartsman/retry"
	"github.com/nats-io/nats.go"
	"go.uber.org/atomic"
	"go.uber.org/multierr"

	"github.com/neuroph12/CompAktor/address"
	"github.com/neuroph12/CompAktor/convention"
	"github.com/neuroph12/CompAktor/internal/wire"
	"github.com/neuroph12/CompAktor/log"
	"github.com/neuroph12/CompAktor/message"
)

// Provider is a NATS backed convention.Provider
type Provider struct {
	config Config
	logger log.Logger

	mu            sync.Mutex
	connection    *nats.Conn
	subscriptions []*nats.Subscription
	self          address.Address

	events  chan convention.Event
	stopCh  chan struct{}
	emitMu  sync.RWMutex
	started *atomic.Bool
}

// enforce compilation error
var _ convention.Provider = (*Provider)(nil)

// NewProvider returns an instance of the nats provider
func NewProvider(config Config, opts ...Option) *Provider {
	provider := &Provider{
		config:  config.withDefaults(),
		logger:  log.DefaultLogger,
		events:  make(chan convention.Event, 256),
		stopCh:  make(chan struct{}),
		started: atomic.NewBool(false),
	}

	for _, opt := range opts {
		opt.Apply(provider)
	}
	return provider
}

// ID returns the provider name
func (p *Provider) ID() string {
	return "nats"
}

// Start connects to the NATS server, subscribes to the subject and announces self
func (p *Provider) Start(ctx context.Context, self address.Address) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.config.Validate(); err != nil {
		return err
	}

	if p.started.Load() {
		return nil
	}

	var connection *nats.Conn
	retrier := retry.NewRetrier(p.config.MaxConnectAttempts, 100*time.Millisecond, p.config.Timeout)
	if err := retrier.RunContext(ctx, func(context.Context) error {
		var err error
		connection, err = nats.Connect(p.config.NatsServer,
			nats.Name(self.String()),
			nats.Timeout(p.config.Timeout),
			nats.ReconnectWait(2*time.Second),
			nats.MaxReconnects(-1))
		return err
	}); err != nil {
		return fmt.Errorf("failed to connect to %s: %w", p.config.NatsServer, err)
	}

	p.self = self
	p.connection = connection

	inbox := connection.NewRespInbox()
	replies, err := connection.Subscribe(inbox, p.handle)
	if err != nil {
		connection.Close()
		return err
	}

	announcements, err := connection.Subscribe(p.config.NatsSubject, p.handle)
	if err != nil {
		connection.Close()
		return err
	}
	p.subscriptions = []*nats.Subscription{replies, announcements}

	announce, err := p.encode(true)
	if err != nil {
		connection.Close()
		return err
	}

	if err := connection.PublishRequest(p.config.NatsSubject, inbox, announce); err != nil {
		connection.Close()
		return err
	}

	p.started.Store(true)
	p.logger.Infof("nats provider started on subject %s", p.config.NatsSubject)
	return connection.Flush()
}

// Watch returns the membership events
func (p *Provider) Watch() <-chan convention.Event {
	return p.events
}

// Stop announces the departure and closes the connection
func (p *Provider) Stop(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started.CompareAndSwap(true, false) {
		return nil
	}

	var err error
	for _, subscription := range p.subscriptions {
		if subscription != nil && subscription.IsValid() {
			err = multierr.Append(err, subscription.Unsubscribe())
		}
	}

	if departure, encodeErr := p.encode(false); encodeErr != nil {
		err = multierr.Append(err, encodeErr)
	} else {
		err = multierr.Append(err, p.connection.Publish(p.config.NatsSubject, departure))
	}

	err = multierr.Append(err, p.connection.Flush())
	p.connection.Close()

	close(p.stopCh)
	p.emitMu.Lock()
	close(p.events)
	p.emitMu.Unlock()
	return err
}

// handle processes announcements and replies. It runs on the NATS subscription goroutine.
func (p *Provider) handle(msg *nats.Msg) {
	decoded, err := wire.Unmarshal(msg.Data)
	if err != nil {
		p.logger.Warnf("dropping malformed announcement on %s: %v", msg.Subject, err)
		return
	}

	switch m := decoded.(type) {
	case *message.RegisterRemoteSystem:
		if m.SystemAddress.SameEndpoint(p.self) {
			return
		}
		p.emit(convention.Event{Type: convention.MemberJoined, Member: m.SystemAddress})

		if msg.Reply == "" {
			return
		}
		reply, err := p.encode(true)
		if err == nil {
			err = msg.Respond(reply)
		}
		if err != nil {
			p.logger.Warnf("failed to reply to %s: %v", m.SystemAddress, err)
		}
	case *message.UnRegisterRemoteSystem:
		if m.SystemAddress.SameEndpoint(p.self) {
			return
		}
		p.emit(convention.Event{Type: convention.MemberLeft, Member: m.SystemAddress})
	default:
		p.logger.Warnf("dropping unexpected %s announcement on %s", decoded.Variant(), msg.Subject)
	}
}

// emit blocks the subscription goroutine until the event is consumed or the provider stops
func (p *Provider) emit(event convention.Event) {
	p.emitMu.RLock()
	defer p.emitMu.RUnlock()

	select {
	case <-p.stopCh:
		return
	default:
	}

	select {
	case p.events <- event:
	case <-p.stopCh:
	}
}

func (p *Provider) encode(register bool) ([]byte, error) {
	var (
		msg message.Message
		err error
	)
	if register {
		msg, err = message.NewRegisterRemoteSystem(p.self, p.self, p.self)
	} else {
		msg, err = message.NewUnRegisterRemoteSystem(p.self, p.self, p.self)
	}
	if err != nil {
		return nil, err
	}
	return wire.Marshal(msg)
}
