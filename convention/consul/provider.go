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

// Package consul discovers remote actor systems registered as services of a
// Consul agent. Membership changes are observed with blocking health queries.
package consul

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/consul/api"
	"go.uber.org/atomic"

	"github.com/neuroph12/CompAktor/address"
	"github.com/neuroph12/CompAktor/convention"
	"github.com/neuroph12/CompAktor/log"
)

// addressMeta is the service meta key carrying the system Address
const addressMeta = "compaktor-address"

// Provider is a Consul backed convention.Provider
type Provider struct {
	config  Config
	logger  log.Logger
	events  chan convention.Event
	started *atomic.Bool

	mu        sync.Mutex
	client    *api.Client
	self      address.Address
	serviceID string
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	once      sync.Once

	// known is only touched by the watch goroutine
	known map[string]address.Address
}

// enforce compilation error
var _ convention.Provider = (*Provider)(nil)

// NewProvider creates a Consul Provider
func NewProvider(config Config, logger log.Logger) *Provider {
	return &Provider{
		config:  config.withDefaults(),
		logger:  logger,
		events:  make(chan convention.Event, 64),
		started: atomic.NewBool(false),
		known:   make(map[string]address.Address),
	}
}

// ID returns the provider name
func (p *Provider) ID() string {
	return "consul"
}

// Start registers the local actor system with the agent and watches the others
func (p *Provider) Start(ctx context.Context, self address.Address) error {
	if err := p.config.Validate(); err != nil {
		return fmt.Errorf("consul provider config is invalid: %w", err)
	}

	if !p.started.CompareAndSwap(false, true) {
		return nil
	}

	consulConfig := api.DefaultConfig()
	consulConfig.Address = p.config.Address
	consulConfig.Datacenter = p.config.Datacenter
	consulConfig.Token = p.config.Token

	client, err := api.NewClient(consulConfig)
	if err != nil {
		p.started.Store(false)
		return fmt.Errorf("failed to create consul client: %w", err)
	}

	if _, err := client.Agent().Self(); err != nil {
		p.started.Store(false)
		return fmt.Errorf("failed to connect to consul: %w", err)
	}

	serviceID := self.HostPort()
	if err := client.Agent().ServiceRegister(p.registration(self, serviceID)); err != nil {
		p.started.Store(false)
		return fmt.Errorf("failed to register %s: %w", serviceID, err)
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	p.mu.Lock()
	p.client = client
	p.self = self
	p.serviceID = serviceID
	p.cancel = cancel
	p.mu.Unlock()

	p.wg.Add(1)
	go p.watch(runCtx)

	p.logger.Infof("consul provider registered %s as %s", self, p.config.ActorSystemName)
	return nil
}

// Watch returns the membership events
func (p *Provider) Watch() <-chan convention.Event {
	return p.events
}

// Stop deregisters the local actor system and closes the events channel
func (p *Provider) Stop(context.Context) error {
	var err error
	p.once.Do(func() {
		p.mu.Lock()
		cancel, client, serviceID := p.cancel, p.client, p.serviceID
		p.mu.Unlock()

		if cancel != nil {
			cancel()
		}
		p.wg.Wait()

		if client != nil {
			if derr := client.Agent().ServiceDeregister(serviceID); derr != nil {
				err = fmt.Errorf("failed to deregister %s: %w", serviceID, derr)
			}
		}
		close(p.events)
	})
	return err
}

func (p *Provider) registration(self address.Address, serviceID string) *api.AgentServiceRegistration {
	service := &api.AgentServiceRegistration{
		ID:      serviceID,
		Name:    p.config.ActorSystemName,
		Address: self.Host(),
		Port:    self.Port(),
		Tags:    []string{p.config.ActorSystemName},
		Meta:    map[string]string{addressMeta: self.String()},
	}

	if check := p.config.HealthCheck; check != nil {
		service.Check = &api.AgentServiceCheck{
			Interval: check.Interval.String(),
			Timeout:  check.Timeout.String(),
			TCP:      self.HostPort(),
		}
	}
	return service
}

func (p *Provider) watch(ctx context.Context) {
	defer p.wg.Done()

	var index uint64
	for {
		opts := (&api.QueryOptions{WaitIndex: index, WaitTime: p.config.WaitTime}).WithContext(ctx)
		entries, meta, err := p.client.Health().Service(p.config.ActorSystemName, p.config.ActorSystemName, p.config.OnlyPassing, opts)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.logger.Warnf("consul health query failed: %v", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(p.config.RetryInterval):
			}
			continue
		}

		// a lower index means the agent state was reset
		if meta.LastIndex < index {
			index = 0
		} else {
			index = meta.LastIndex
		}

		if !p.reconcile(ctx, members(entries, p.serviceID)) {
			return
		}
	}
}

// reconcile emits the difference between the known members and current.
// It returns false when ctx is done.
func (p *Provider) reconcile(ctx context.Context, current map[string]address.Address) bool {
	for key, member := range current {
		if _, ok := p.known[key]; ok {
			continue
		}
		if !p.emit(ctx, convention.Event{Type: convention.MemberJoined, Member: member}) {
			return false
		}
		p.known[key] = member
	}

	for key, member := range p.known {
		if _, ok := current[key]; ok {
			continue
		}
		if !p.emit(ctx, convention.Event{Type: convention.MemberLeft, Member: member}) {
			return false
		}
		delete(p.known, key)
	}
	return true
}

func (p *Provider) emit(ctx context.Context, event convention.Event) bool {
	select {
	case p.events <- event:
		return true
	case <-ctx.Done():
		return false
	}
}

// members turns health entries into system Addresses keyed by host:port.
// The entry registered as selfID is skipped.
func members(entries []*api.ServiceEntry, selfID string) map[string]address.Address {
	out := make(map[string]address.Address, len(entries))
	for _, entry := range entries {
		if entry == nil || entry.Service == nil || entry.Service.ID == selfID {
			continue
		}

		if value, ok := entry.Service.Meta[addressMeta]; ok {
			if member, err := address.Parse(value); err == nil && !member.IsNoSender() {
				member = member.WithPath(address.SystemPath)
				out[member.HostPort()] = member
				continue
			}
		}

		host := entry.Service.Address
		if host == "" && entry.Node != nil {
			host = entry.Node.Address
		}
		if host == "" || entry.Service.Port <= 0 {
			continue
		}

		member := address.New(host, entry.Service.Port, address.SystemPath)
		if member.Validate() != nil {
			continue
		}
		out[member.HostPort()] = member
	}
	return out
}
