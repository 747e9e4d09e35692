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

// Package etcd discovers remote actor systems through leased keys of an etcd
// cluster. Every actor system puts its host:port under the convention prefix
// and watches the prefix for the others.
package etcd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"

	"go.etcd.io/etcd/api/v3/mvccpb"
	clientv3 "go.etcd.io/etcd/client/v3"
	"go.etcd.io/etcd/client/v3/namespace"
	"go.uber.org/atomic"

	"github.com/neuroph12/CompAktor/address"
	"github.com/neuroph12/CompAktor/convention"
	"github.com/neuroph12/CompAktor/log"
)

// Provider is an etcd backed convention.Provider
type Provider struct {
	config  Config
	logger  log.Logger
	events  chan convention.Event
	started *atomic.Bool

	mu      sync.Mutex
	client  *clientv3.Client
	kv      clientv3.KV
	lease   clientv3.Lease
	watcher clientv3.Watcher
	leaseID clientv3.LeaseID
	self    address.Address
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	once    sync.Once

	// known is only touched by the watch goroutine
	known map[string]struct{}
}

// enforce compilation error
var _ convention.Provider = (*Provider)(nil)

// NewProvider creates an etcd Provider
func NewProvider(config Config, logger log.Logger) *Provider {
	return &Provider{
		config:  config.withDefaults(),
		logger:  logger,
		events:  make(chan convention.Event, 64),
		started: atomic.NewBool(false),
		known:   make(map[string]struct{}),
	}
}

// ID returns the provider name
func (p *Provider) ID() string {
	return "etcd"
}

// Start puts the local actor system under a lease and watches the convention prefix
func (p *Provider) Start(ctx context.Context, self address.Address) error {
	if err := p.config.Validate(); err != nil {
		return fmt.Errorf("etcd provider config is invalid: %w", err)
	}

	if !p.started.CompareAndSwap(false, true) {
		return nil
	}

	client, err := clientv3.New(clientv3.Config{
		Endpoints:   p.config.Endpoints,
		DialTimeout: p.config.DialTimeout,
		TLS:         p.config.TLS,
		Username:    p.config.Username,
		Password:    p.config.Password,
	})
	if err != nil {
		p.started.Store(false)
		return fmt.Errorf("failed to create etcd client: %w", err)
	}

	if err := p.register(ctx, client, self); err != nil {
		p.started.Store(false)
		return errors.Join(err, client.Close())
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	keepAlive, err := p.lease.KeepAlive(runCtx, p.leaseID)
	if err != nil {
		cancel()
		p.started.Store(false)
		p.mu.Lock()
		p.client = nil
		p.mu.Unlock()
		return errors.Join(fmt.Errorf("failed to keep the lease alive: %w", err), client.Close())
	}

	p.mu.Lock()
	p.cancel = cancel
	p.mu.Unlock()

	p.wg.Add(2)
	go func() {
		defer p.wg.Done()
		for range keepAlive {
		}
	}()
	go p.watch(runCtx)

	p.logger.Infof("etcd provider registered %s under %s", self, p.config.ActorSystemName)
	return nil
}

func (p *Provider) register(ctx context.Context, client *clientv3.Client, self address.Address) error {
	dialCtx, cancel := context.WithTimeout(ctx, p.config.DialTimeout)
	defer cancel()
	if _, err := client.Status(dialCtx, p.config.Endpoints[0]); err != nil {
		return fmt.Errorf("failed to connect to etcd: %w", err)
	}

	prefix := p.config.ActorSystemName + "/"
	kv := namespace.NewKV(client.KV, prefix)
	lease := namespace.NewLease(client.Lease, prefix)

	opCtx, opCancel := context.WithTimeout(ctx, p.config.Timeout)
	defer opCancel()

	grant, err := lease.Grant(opCtx, p.config.TTL)
	if err != nil {
		return fmt.Errorf("failed to create lease: %w", err)
	}

	if _, err := kv.Put(opCtx, self.HostPort(), self.String(), clientv3.WithLease(grant.ID)); err != nil {
		return fmt.Errorf("failed to register %s: %w", self, err)
	}

	p.mu.Lock()
	p.client = client
	p.kv = kv
	p.lease = lease
	p.watcher = namespace.NewWatcher(client.Watcher, prefix)
	p.leaseID = grant.ID
	p.self = self
	p.mu.Unlock()
	return nil
}

// Watch returns the membership events
func (p *Provider) Watch() <-chan convention.Event {
	return p.events
}

// Stop revokes the lease, closes the client and the events channel
func (p *Provider) Stop(ctx context.Context) error {
	var err error
	p.once.Do(func() {
		p.mu.Lock()
		cancel, client, lease, leaseID := p.cancel, p.client, p.lease, p.leaseID
		p.mu.Unlock()

		if cancel != nil {
			cancel()
		}
		p.wg.Wait()

		if client != nil {
			revokeCtx, revokeCancel := context.WithTimeout(context.WithoutCancel(ctx), p.config.Timeout)
			if _, rerr := lease.Revoke(revokeCtx, leaseID); rerr != nil {
				err = fmt.Errorf("failed to revoke lease: %w", rerr)
			}
			revokeCancel()
			err = errors.Join(err, client.Close())
		}
		close(p.events)
	})
	return err
}

func (p *Provider) watch(ctx context.Context) {
	defer p.wg.Done()

	opCtx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	resp, err := p.kv.Get(opCtx, "", clientv3.WithPrefix())
	cancel()
	if err != nil {
		p.logger.Errorf("failed to list convention members: %v", err)
		return
	}

	for _, kv := range resp.Kvs {
		if !p.apply(ctx, clientv3.EventTypePut, string(kv.Key)) {
			return
		}
	}

	updates := p.watcher.Watch(ctx, "", clientv3.WithPrefix(), clientv3.WithRev(resp.Header.Revision+1))
	for update := range updates {
		if err := update.Err(); err != nil {
			p.logger.Warnf("etcd watch failed: %v", err)
			continue
		}
		for _, event := range update.Events {
			if !p.apply(ctx, event.Type, string(event.Kv.Key)) {
				return
			}
		}
	}
}

// apply turns a key change into a membership event. It returns false when ctx is done.
func (p *Provider) apply(ctx context.Context, eventType mvccpb.Event_EventType, key string) bool {
	member, ok := memberOf(key)
	if !ok || member.SameEndpoint(p.self) {
		return true
	}

	var event convention.Event
	switch eventType {
	case clientv3.EventTypePut:
		if _, seen := p.known[key]; seen {
			return true
		}
		p.known[key] = struct{}{}
		event = convention.Event{Type: convention.MemberJoined, Member: member}
	case clientv3.EventTypeDelete:
		if _, seen := p.known[key]; !seen {
			return true
		}
		delete(p.known, key)
		event = convention.Event{Type: convention.MemberLeft, Member: member}
	default:
		return true
	}

	select {
	case p.events <- event:
		return true
	case <-ctx.Done():
		return false
	}
}

// memberOf reads the system Address out of a host:port key
func memberOf(key string) (address.Address, bool) {
	host, portStr, err := net.SplitHostPort(key)
	if err != nil {
		return address.Address{}, false
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return address.Address{}, false
	}
	member := address.New(host, port, address.SystemPath)
	if member.Validate() != nil {
		return address.Address{}, false
	}
	return member, true
}
