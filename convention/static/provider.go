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

package static

import (
	"context"
	"net"
	"strconv"
	"sync"

	"go.uber.org/atomic"

	"github.com/neuroph12/CompAktor/address"
	"github.com/neuroph12/CompAktor/convention"
	"github.com/neuroph12/CompAktor/log"
)

// Provider announces a fixed list of remote actor systems.
// Every system is reported as joined once at Start and never leaves.
type Provider struct {
	config  Config
	logger  log.Logger
	events  chan convention.Event
	started *atomic.Bool
	once    sync.Once
}

// enforce compilation error
var _ convention.Provider = (*Provider)(nil)

// NewProvider creates a static Provider
func NewProvider(config Config, logger log.Logger) *Provider {
	return &Provider{
		config:  config,
		logger:  logger,
		events:  make(chan convention.Event, len(config.Systems)),
		started: atomic.NewBool(false),
	}
}

// ID returns the provider name
func (p *Provider) ID() string {
	return "static"
}

// Start emits a MemberJoined event for every configured system except self
func (p *Provider) Start(_ context.Context, self address.Address) error {
	if err := p.config.Validate(); err != nil {
		return err
	}

	if !p.started.CompareAndSwap(false, true) {
		return nil
	}

	for _, system := range p.config.Systems {
		host, portStr, _ := net.SplitHostPort(system)
		port, _ := strconv.Atoi(portStr)
		member := address.New(host, port, address.SystemPath)
		if member.SameEndpoint(self) {
			continue
		}
		p.events <- convention.Event{Type: convention.MemberJoined, Member: member}
	}

	p.logger.Infof("static provider started with %d systems", len(p.config.Systems))
	return nil
}

// Watch returns the membership events
func (p *Provider) Watch() <-chan convention.Event {
	return p.events
}

// Stop closes the events channel
func (p *Provider) Stop(context.Context) error {
	p.once.Do(func() { close(p.events) })
	return nil
}
