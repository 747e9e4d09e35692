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

package convention

import (
	"context"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/neuroph12/CompAktor/address"
	"github.com/neuroph12/CompAktor/log"
	"github.com/neuroph12/CompAktor/message"
)

// Sender delivers messages to the local actor system
type Sender interface {
	Tell(ctx context.Context, msg message.Message) error
}

// Coordinator consumes membership events and keeps the local actor system
// informed about remote systems and the elected convention leader
type Coordinator struct {
	provider Provider
	sender   Sender
	logger   log.Logger

	self   address.Address
	view   mapset.Set[address.Address]
	mu     sync.RWMutex
	leader address.Address

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewCoordinator creates a Coordinator
func NewCoordinator(provider Provider, sender Sender, logger log.Logger) *Coordinator {
	return &Coordinator{
		provider: provider,
		sender:   sender,
		logger:   logger,
		view:     mapset.NewSet[address.Address](),
		stopCh:   make(chan struct{}),
	}
}

// Start joins the membership and announces the initial leader
func (c *Coordinator) Start(ctx context.Context, self address.Address) error {
	c.self = self
	if err := c.provider.Start(ctx, self); err != nil {
		return err
	}

	c.elect(ctx)

	c.wg.Add(1)
	go c.watch()
	c.logger.Infof("convention coordinator started with %s provider", c.provider.ID())
	return nil
}

// Stop leaves the membership and waits for the event loop to return
func (c *Coordinator) Stop(ctx context.Context) error {
	close(c.stopCh)
	err := c.provider.Stop(ctx)
	c.wg.Wait()
	return err
}

// Members returns the current view of remote systems
func (c *Coordinator) Members() []address.Address {
	return c.view.ToSlice()
}

// Leader returns the last elected leader
func (c *Coordinator) Leader() address.Address {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.leader
}

func (c *Coordinator) watch() {
	defer c.wg.Done()
	events := c.provider.Watch()
	ctx := context.Background()
	for {
		select {
		case <-c.stopCh:
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			c.handle(ctx, event)
		}
	}
}

func (c *Coordinator) handle(ctx context.Context, event Event) {
	member := event.Member
	if member.IsNoSender() || member.SameEndpoint(c.self) {
		return
	}

	switch event.Type {
	case MemberJoined:
		if !c.view.Add(member) {
			return
		}
		c.logger.Infof("remote actor system %s joined", member)
		msg, err := message.NewRegisterRemoteSystem(member, c.self, c.self)
		c.tell(ctx, msg, err)
	case MemberLeft:
		if !c.view.Contains(member) {
			return
		}
		c.view.Remove(member)
		c.logger.Infof("remote actor system %s left", member)
		msg, err := message.NewUnRegisterRemoteSystem(member, c.self, c.self)
		c.tell(ctx, msg, err)
	default:
		return
	}

	c.elect(ctx)
}

// elect recomputes the leader and announces it when it changed
func (c *Coordinator) elect(ctx context.Context) {
	leader := Elect(c.self, c.view.ToSlice())

	c.mu.Lock()
	changed := leader != c.leader
	c.leader = leader
	c.mu.Unlock()

	if !changed {
		return
	}

	c.logger.Infof("convention leader is %s", leader)
	msg, err := message.NewSetConventionLeader(leader, leader.Host(), leader.Port(), c.self, address.NoSender())
	c.tell(ctx, msg, err)
}

func (c *Coordinator) tell(ctx context.Context, msg message.Message, err error) {
	if err == nil {
		err = c.sender.Tell(ctx, msg)
	}
	if err != nil {
		c.logger.Warnf("convention coordinator failed to notify %s: %v", c.self, err)
	}
}
