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

// Package gossip discovers remote actor systems through the SWIM gossip
// protocol of hashicorp/memberlist. Every node advertises its actor system
// Address as node meta.
package gossip

import (
	"context"
	"fmt"
	"sync"

	"github.com/flowchartsman/retry"
	"github.com/hashicorp/memberlist"
	"go.uber.org/atomic"
	"go.uber.org/multierr"

	"github.com/neuroph12/CompAktor/address"
	"github.com/neuroph12/CompAktor/convention"
	"github.com/neuroph12/CompAktor/internal/wire"
	"github.com/neuroph12/CompAktor/log"
)

// Provider is a memberlist backed convention.Provider
type Provider struct {
	config Config
	logger log.Logger

	mu         sync.Mutex
	memberlist *memberlist.Memberlist
	nodeEvents chan memberlist.NodeEvent
	events     chan convention.Event
	self       address.Address

	started *atomic.Bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// enforce compilation error
var _ convention.Provider = (*Provider)(nil)

// NewProvider creates a gossip Provider
func NewProvider(config Config, logger log.Logger) *Provider {
	return &Provider{
		config:     config.withDefaults(),
		logger:     logger,
		nodeEvents: make(chan memberlist.NodeEvent, 256),
		events:     make(chan convention.Event, 256),
		started:    atomic.NewBool(false),
		stopCh:     make(chan struct{}),
	}
}

// ID returns the provider name
func (p *Provider) ID() string {
	return "gossip"
}

// Start creates the memberlist and joins the configured peers
func (p *Provider) Start(ctx context.Context, self address.Address) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.config.Validate(); err != nil {
		return err
	}

	if p.started.Load() {
		return nil
	}

	mconfig := memberlist.DefaultLANConfig()
	mconfig.Name = p.config.address()
	mconfig.BindAddr = p.config.BindAddr
	mconfig.BindPort = p.config.BindPort
	mconfig.AdvertisePort = p.config.BindPort
	mconfig.Delegate = newDelegate(self)
	mconfig.Events = &memberlist.ChannelEventDelegate{Ch: p.nodeEvents}
	mconfig.LogOutput = nil
	mconfig.Logger = p.logger.StdLogger()

	mlist, err := memberlist.Create(mconfig)
	if err != nil {
		return fmt.Errorf("failed to create memberlist: %w", err)
	}

	p.self = self
	p.memberlist = mlist
	p.wg.Add(1)
	go p.listen()

	if len(p.config.Peers) > 0 {
		retrier := retry.NewRetrier(p.config.MaxJoinAttempts, p.config.JoinRetryInterval, p.config.JoinRetryInterval)
		if err := retrier.RunContext(ctx, func(context.Context) error {
			_, err := mlist.Join(p.config.Peers)
			return err
		}); err != nil {
			close(p.stopCh)
			p.wg.Wait()
			return multierr.Append(fmt.Errorf("failed to join %v: %w", p.config.Peers, err), mlist.Shutdown())
		}
	}

	p.started.Store(true)
	p.logger.Infof("gossip provider started at %s", p.config.address())
	return nil
}

// Watch returns the membership events
func (p *Provider) Watch() <-chan convention.Event {
	return p.events
}

// Stop leaves the gossip membership
func (p *Provider) Stop(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started.CompareAndSwap(true, false) {
		return nil
	}

	err := multierr.Combine(
		p.memberlist.Leave(p.config.LeaveTimeout),
		p.memberlist.Shutdown(),
	)

	close(p.stopCh)
	p.wg.Wait()
	close(p.events)
	return err
}

// Members returns the actor system Address of every live node, self included
func (p *Provider) Members() []address.Address {
	p.mu.Lock()
	mlist := p.memberlist
	p.mu.Unlock()
	if mlist == nil {
		return nil
	}

	var members []address.Address
	for _, node := range mlist.Members() {
		if member, err := wire.UnmarshalAddress(node.Meta); err == nil {
			members = append(members, member)
		}
	}
	return members
}

// listen translates memberlist node events into membership events
func (p *Provider) listen() {
	defer p.wg.Done()
	for {
		select {
		case <-p.stopCh:
			return
		case event := <-p.nodeEvents:
			var eventType convention.EventType
			switch event.Event {
			case memberlist.NodeJoin:
				eventType = convention.MemberJoined
			case memberlist.NodeLeave:
				eventType = convention.MemberLeft
			default:
				continue
			}

			if event.Node == nil {
				continue
			}

			member, err := wire.UnmarshalAddress(event.Node.Meta)
			if err != nil {
				p.logger.Warnf("skipping node %s with invalid meta: %v", event.Node.Name, err)
				continue
			}

			if member.SameEndpoint(p.self) {
				continue
			}

			select {
			case p.events <- convention.Event{Type: eventType, Member: member}:
			case <-p.stopCh:
				return
			}
		}
	}
}
