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
	"strings"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/grandcat/zeroconf"
	"go.uber.org/atomic"

	"github.com/neuroph12/CompAktor/address"
	"github.com/neuroph12/CompAktor/convention"
	"github.com/neuroph12/CompAktor/log"
)

// addressKey is the TXT record key carrying the system Address
const addressKey = "addr="

// Provider discovers actor systems announced on the local network with mDNS.
// Each system registers its system Address in a TXT record and browses for its peers.
type Provider struct {
	config  Config
	logger  log.Logger
	events  chan convention.Event
	started *atomic.Bool

	mu      sync.Mutex
	stopCh  chan struct{}
	server  *zeroconf.Server
	cancel  context.CancelFunc
	seen    mapset.Set[string]
	self    address.Address
	browsed sync.WaitGroup
	once    sync.Once
}

// enforce compilation error
var _ convention.Provider = (*Provider)(nil)

// NewProvider creates an mDNS Provider
func NewProvider(config Config, logger log.Logger) *Provider {
	return &Provider{
		config:  config,
		logger:  logger,
		events:  make(chan convention.Event, 64),
		started: atomic.NewBool(false),
		stopCh:  make(chan struct{}),
		seen:    mapset.NewSet[string](),
	}
}

// ID returns the provider name
func (p *Provider) ID() string {
	return "mdns"
}

// Start registers the local system and browses for the others
func (p *Provider) Start(ctx context.Context, self address.Address) error {
	if err := p.config.Validate(); err != nil {
		return err
	}

	if !p.started.CompareAndSwap(false, true) {
		return nil
	}

	p.self = self
	server, err := zeroconf.Register(p.config.ServiceName, p.config.Service, p.config.Domain,
		self.Port(), []string{addressKey + self.String()}, nil)
	if err != nil {
		p.started.Store(false)
		return err
	}

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		server.Shutdown()
		p.started.Store(false)
		return err
	}

	entries := make(chan *zeroconf.ServiceEntry, 16)
	browseCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	if err := resolver.Browse(browseCtx, p.config.Service, p.config.Domain, entries); err != nil {
		cancel()
		server.Shutdown()
		p.started.Store(false)
		return err
	}

	p.mu.Lock()
	p.server = server
	p.cancel = cancel
	p.mu.Unlock()

	p.browsed.Add(1)
	go p.listen(entries)

	p.logger.Infof("mdns provider started for (%s)", self.String())
	return nil
}

// Watch returns the membership events
func (p *Provider) Watch() <-chan convention.Event {
	return p.events
}

// Stop shuts the mDNS server down and closes the events channel
func (p *Provider) Stop(context.Context) error {
	p.once.Do(func() {
		p.mu.Lock()
		cancel, server := p.cancel, p.server
		p.mu.Unlock()

		if cancel != nil {
			cancel()
		}
		if server != nil {
			server.Shutdown()
		}
		close(p.stopCh)
		p.browsed.Wait()
		close(p.events)
	})
	return nil
}

func (p *Provider) listen(entries <-chan *zeroconf.ServiceEntry) {
	defer p.browsed.Done()
	for entry := range entries {
		member, ok := memberOf(entry.Text)
		if !ok || member.SameEndpoint(p.self) {
			continue
		}

		key := member.HostPort()
		if entry.TTL == 0 {
			if p.seen.Contains(key) {
				p.seen.Remove(key)
				p.emit(convention.Event{Type: convention.MemberLeft, Member: member})
			}
			continue
		}

		if p.seen.Add(key) {
			p.emit(convention.Event{Type: convention.MemberJoined, Member: member})
		}
	}
}

func (p *Provider) emit(event convention.Event) {
	select {
	case p.events <- event:
	case <-p.stopCh:
	}
}

// memberOf reads the system Address out of a TXT record set
func memberOf(text []string) (address.Address, bool) {
	for _, record := range text {
		value, ok := strings.CutPrefix(record, addressKey)
		if !ok {
			continue
		}
		addr, err := address.Parse(value)
		if err != nil || addr.IsNoSender() {
			return address.Address{}, false
		}
		return addr.WithPath(address.SystemPath), true
	}
	return address.Address{}, false
}
