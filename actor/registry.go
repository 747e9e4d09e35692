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
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/neuroph12/CompAktor/address"
	"github.com/neuroph12/CompAktor/errors"
	"github.com/neuroph12/CompAktor/internal/types"
	"github.com/neuroph12/CompAktor/message"
)

// Registry owns every PID of an actor system.
//
// A single mutex serializes all mutations so that parent and child links are
// always updated on both sides at once. The Registry is also reachable as a
// message receiver at the "registry" path of its actor system.
type Registry struct {
	mu      sync.RWMutex
	pids    pidMap
	kinds   types.Registry
	system  *ActorSystem
	address address.Address
	self    *PID
}

func newRegistry(system *ActorSystem) *Registry {
	r := &Registry{
		pids:    newPIDMap(),
		kinds:   types.NewRegistry(),
		system:  system,
		address: system.Address().WithPath(address.RegistryPath),
	}
	r.self = newReceiverPID(system, r.address, r.receive)
	return r
}

// Address returns the Address the registry receives messages at
func (r *Registry) Address() address.Address {
	return r.address
}

// Register makes an actor kind available to CreateActor
func (r *Registry) Register(actor Actor) string {
	r.kinds.Register(actor)
	return types.Name(actor)
}

// CreateActor instantiates a registered kind, allocates its Address and links it to parent.
// parent may be address.NoSender().
func (r *Registry) CreateActor(ctx context.Context, kind string, config message.ActorConfig, parent address.Address) (address.Address, error) {
	instance, ok := r.kinds.New(kind)
	if !ok {
		return address.NoSender(), fmt.Errorf("kind=(%s) %w", kind, errors.ErrTypeNotRegistered)
	}

	actor, ok := instance.(Actor)
	if !ok {
		return address.NoSender(), errors.ErrInstanceNotAnActor
	}

	return r.spawn(ctx, kind, actor, config, parent)
}

// Spawn registers a ready actor instance the same way CreateActor does
func (r *Registry) Spawn(ctx context.Context, actor Actor, config message.ActorConfig, parent address.Address) (address.Address, error) {
	if actor == nil {
		return address.NoSender(), errors.ErrInstanceNotAnActor
	}
	return r.spawn(ctx, types.Name(actor), actor, config, parent)
}

func (r *Registry) spawn(_ context.Context, kind string, actor Actor, config message.ActorConfig, parent address.Address) (address.Address, error) {
	r.mu.Lock()

	var parentPID *PID
	if !parent.IsNoSender() {
		var ok bool
		if parentPID, ok = r.pids.Load(parent); !ok {
			r.mu.Unlock()
			return address.NoSender(), errors.NewInvalidParentError(parent)
		}
	}

	addr := r.address.WithPath(uuid.NewString())
	pid := newPID(r.system, addr, kind, actor, config.WithDefaults())
	r.pids.Store(addr, pid)
	if parentPID != nil {
		link(parentPID, pid)
	}

	r.mu.Unlock()

	pid.start()
	r.system.logger.Debugf("actor %s of kind %s created", addr, kind)
	return addr, nil
}

// RegisterActor records the status of an existing actor
func (r *Registry) RegisterActor(addr address.Address, status message.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	pid, ok := r.pids.Load(addr)
	if !ok {
		return errors.NewUnknownActorError(addr)
	}
	pid.setStatus(status)
	return nil
}

// RemoveActor drops the lookup entry and leaves the status untouched.
// The entry is detached from its parent and its direct children become roots.
// It is a no-op when the Address is absent.
func (r *Registry) RemoveActor(addr address.Address) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pid, ok := r.pids.Load(addr)
	if !ok {
		return
	}

	if parent, ok := pid.Parent(); ok {
		if parentPID, ok := r.pids.Load(parent); ok {
			unlink(parentPID, pid)
		}
	}

	for _, child := range pid.Children() {
		if childPID, ok := r.pids.Load(child); ok {
			unlink(pid, childPID)
		}
	}

	r.pids.Delete(addr)
}

// ActorCleanup destroys the actor and, depth-first, its whole subtree.
// It is a no-op when the Address is absent.
func (r *Registry) ActorCleanup(addr address.Address) {
	r.mu.Lock()
	r.cleanup(addr)
	r.mu.Unlock()
}

func (r *Registry) cleanup(addr address.Address) {
	pid, ok := r.pids.Load(addr)
	if !ok {
		return
	}

	for _, child := range pid.Children() {
		r.cleanup(child)
	}

	if parent, ok := pid.Parent(); ok {
		if parentPID, ok := r.pids.Load(parent); ok {
			unlink(parentPID, pid)
		} else {
			pid.setParent(address.NoSender())
		}
	}

	pid.dispose()
	pid.setStatus(message.StatusStopped)
	r.pids.Delete(addr)
	r.system.logger.Debugf("actor %s cleaned up", addr)
}

// AddChild links child to parent. It is a no-op when the link already exists.
func (r *Registry) AddChild(parent, child address.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	parentPID, childPID, err := r.pair(parent, child)
	if err != nil {
		return err
	}

	current, hasParent := childPID.Parent()
	if hasParent {
		if _, ok := r.pids.Load(current); !ok {
			hasParent = false
		}
	}

	switch {
	case hasParent && current == parent:
		return nil
	case hasParent:
		return errors.NewErrInvalidChild(child.String(), fmt.Sprintf("already a child of %s", current))
	case r.isAncestor(child, parent):
		return errors.NewErrInvalidChild(child.String(), "is an ancestor of "+parent.String())
	}

	link(parentPID, childPID)
	return nil
}

// RemoveChild unlinks child from parent. It is a no-op when they are not linked.
func (r *Registry) RemoveChild(parent, child address.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	parentPID, childPID, err := r.pair(parent, child)
	if err != nil {
		return err
	}

	if current, ok := childPID.Parent(); ok && current == parent {
		unlink(parentPID, childPID)
	}
	return nil
}

// pair resolves both sides of a link. The caller holds the lock.
func (r *Registry) pair(parent, child address.Address) (*PID, *PID, error) {
	if parent == child {
		return nil, nil, errors.NewErrInvalidChild(child.String(), "cannot be its own parent")
	}

	parentPID, ok := r.pids.Load(parent)
	if !ok {
		return nil, nil, errors.NewUnknownActorError(parent)
	}

	childPID, ok := r.pids.Load(child)
	if !ok {
		return nil, nil, errors.NewUnknownActorError(child)
	}
	return parentPID, childPID, nil
}

// isAncestor reports whether candidate is on the parent chain of addr
func (r *Registry) isAncestor(candidate, addr address.Address) bool {
	for current := addr; ; {
		pid, ok := r.pids.Load(current)
		if !ok {
			return false
		}
		parent, ok := pid.Parent()
		if !ok {
			return false
		}
		if parent == candidate {
			return true
		}
		current = parent
	}
}

func link(parent, child *PID) {
	parent.children.Add(child.address)
	child.setParent(parent.address)
}

func unlink(parent, child *PID) {
	parent.children.Remove(child.address)
	child.setParent(address.NoSender())
}

// SetActorStatus overwrites the status. An unknown Address is only logged.
func (r *Registry) SetActorStatus(addr address.Address, status message.Status) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pid, ok := r.pids.Load(addr)
	if !ok {
		r.system.logger.Warnf("cannot set status %s: %v", status, errors.NewUnknownActorError(addr))
		return
	}
	pid.setStatus(status)
}

// StopActor enqueues a StopActor control signal to the target.
// The registry entry is kept.
func (r *Registry) StopActor(target address.Address) error {
	pid, ok := r.Lookup(target)
	if !ok {
		return errors.NewUnknownActorError(target)
	}

	msg, err := message.NewStopActor(target, r.address)
	if err != nil {
		return err
	}
	return pid.enqueue(msg)
}

// Lookup returns the PID at the given Address
func (r *Registry) Lookup(addr address.Address) (*PID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.pids.Load(addr)
}

// Len returns the number of actors
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.pids.Len()
}

// PIDs returns every registered PID
func (r *Registry) PIDs() []*PID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.pids.Values()
}

// receive is the handler of the registry dispatch loop
func (r *Registry) receive(ctx context.Context, msg message.Message) error {
	switch m := msg.(type) {
	case *message.CreateActor:
		_, err := r.CreateActor(ctx, m.Kind, m.Config, m.ParentAddress)
		return err
	case *message.RegisterActor:
		return r.RegisterActor(m.ActorAddress, m.ActorStatus)
	case *message.RemoveActor:
		r.RemoveActor(m.ActorAddress)
	case *message.ActorCleanup:
		r.ActorCleanup(m.ActorAddress)
	case *message.AddChild:
		return r.AddChild(m.ParentAddress, m.ChildAddress)
	case *message.RemoveChild:
		return r.RemoveChild(m.ParentAddress, m.ChildAddress)
	case *message.SetActorStatus:
		r.SetActorStatus(m.ActorAddress, m.Status)
	default:
		return errors.NewUnhandledMessageError(msg.Variant(), r.address)
	}
	return nil
}
