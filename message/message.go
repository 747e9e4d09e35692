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

// Package message defines the closed set of messages exchanged between actors,
// the actor registry and the actor system.
//
// Every message carries a target and a sender Address. The target is always
// set; the sender may be address.NoSender() for system injected traffic.
// Messages are immutable once constructed.
package message

import (
	"reflect"

	"github.com/neuroph12/CompAktor/address"
	cerrors "github.com/neuroph12/CompAktor/errors"
)

// Message is the sealed envelope every variant implements
type Message interface {
	// Target returns the recipient Address
	Target() address.Address
	// Sender returns the sender Address, possibly address.NoSender()
	Sender() address.Address
	// Variant returns the variant name
	Variant() string
	sealed()
}

type envelope struct {
	target address.Address
	sender address.Address
}

func (e envelope) Target() address.Address { return e.target }
func (e envelope) Sender() address.Address { return e.sender }
func (envelope) sealed()                   {}

func newEnvelope(target, sender address.Address) (envelope, error) {
	if target.IsNoSender() {
		return envelope{}, cerrors.ErrInvalidMessage
	}
	return envelope{target: target, sender: sender}, nil
}

// CreateActor asks the registry to create an actor of a registered kind
type CreateActor struct {
	envelope
	Kind          string
	Config        ActorConfig
	ParentAddress address.Address
}

// NewCreateActor creates a CreateActor message. parent may be address.NoSender().
func NewCreateActor(kind string, config ActorConfig, parent, target, sender address.Address) (*CreateActor, error) {
	env, err := newEnvelope(target, sender)
	if err != nil {
		return nil, err
	}
	return &CreateActor{envelope: env, Kind: kind, Config: config, ParentAddress: parent}, nil
}

func (*CreateActor) Variant() string { return "CreateActor" }

// RegisterActor records the status of an existing actor
type RegisterActor struct {
	envelope
	ActorAddress address.Address
	ActorStatus  Status
}

// NewRegisterActor creates a RegisterActor message
func NewRegisterActor(actor address.Address, status Status, target, sender address.Address) (*RegisterActor, error) {
	env, err := newEnvelope(target, sender)
	if err != nil {
		return nil, err
	}
	return &RegisterActor{envelope: env, ActorAddress: actor, ActorStatus: status}, nil
}

func (*RegisterActor) Variant() string { return "RegisterActor" }

// RemoveActor drops an actor from the lookup table without touching its status
type RemoveActor struct {
	envelope
	ActorAddress address.Address
}

// NewRemoveActor creates a RemoveActor message
func NewRemoveActor(actor, target, sender address.Address) (*RemoveActor, error) {
	env, err := newEnvelope(target, sender)
	if err != nil {
		return nil, err
	}
	return &RemoveActor{envelope: env, ActorAddress: actor}, nil
}

func (*RemoveActor) Variant() string { return "RemoveActor" }

// ActorCleanup destroys an actor and its subtree
type ActorCleanup struct {
	envelope
	ActorAddress address.Address
}

// NewActorCleanup creates an ActorCleanup message
func NewActorCleanup(actor, target, sender address.Address) (*ActorCleanup, error) {
	env, err := newEnvelope(target, sender)
	if err != nil {
		return nil, err
	}
	return &ActorCleanup{envelope: env, ActorAddress: actor}, nil
}

func (*ActorCleanup) Variant() string { return "ActorCleanup" }

// AddChild links a child to a parent
type AddChild struct {
	envelope
	ParentAddress address.Address
	ChildAddress  address.Address
}

// NewAddChild creates an AddChild message
func NewAddChild(parent, child, target, sender address.Address) (*AddChild, error) {
	env, err := newEnvelope(target, sender)
	if err != nil {
		return nil, err
	}
	return &AddChild{envelope: env, ParentAddress: parent, ChildAddress: child}, nil
}

func (*AddChild) Variant() string { return "AddChild" }

// RemoveChild unlinks a child from its parent
type RemoveChild struct {
	envelope
	ParentAddress address.Address
	ChildAddress  address.Address
}

// NewRemoveChild creates a RemoveChild message
func NewRemoveChild(parent, child, target, sender address.Address) (*RemoveChild, error) {
	env, err := newEnvelope(target, sender)
	if err != nil {
		return nil, err
	}
	return &RemoveChild{envelope: env, ParentAddress: parent, ChildAddress: child}, nil
}

func (*RemoveChild) Variant() string { return "RemoveChild" }

// SetActorStatus overwrites the status of an actor
type SetActorStatus struct {
	envelope
	ActorAddress address.Address
	Status       Status
}

// NewSetActorStatus creates a SetActorStatus message
func NewSetActorStatus(actor address.Address, status Status, target, sender address.Address) (*SetActorStatus, error) {
	env, err := newEnvelope(target, sender)
	if err != nil {
		return nil, err
	}
	return &SetActorStatus{envelope: env, ActorAddress: actor, Status: status}, nil
}

func (*SetActorStatus) Variant() string { return "SetActorStatus" }

// StopActor asks the target to shut down
type StopActor struct {
	envelope
}

// NewStopActor creates a StopActor message
func NewStopActor(target, sender address.Address) (*StopActor, error) {
	env, err := newEnvelope(target, sender)
	if err != nil {
		return nil, err
	}
	return &StopActor{envelope: env}, nil
}

func (*StopActor) Variant() string { return "StopActor" }

// SetConventionLeader announces the convention leader.
// Host and Port identify the endpoint of the leader system.
type SetConventionLeader struct {
	envelope
	ActorAddress address.Address
	Host         string
	Port         int
}

// NewSetConventionLeader creates a SetConventionLeader message
func NewSetConventionLeader(actor address.Address, host string, port int, target, sender address.Address) (*SetConventionLeader, error) {
	env, err := newEnvelope(target, sender)
	if err != nil {
		return nil, err
	}
	return &SetConventionLeader{envelope: env, ActorAddress: actor, Host: host, Port: port}, nil
}

func (*SetConventionLeader) Variant() string { return "SetConventionLeader" }

// RegisterRemoteSystem makes a remote actor system known
type RegisterRemoteSystem struct {
	envelope
	SystemAddress address.Address
}

// NewRegisterRemoteSystem creates a RegisterRemoteSystem message
func NewRegisterRemoteSystem(system, target, sender address.Address) (*RegisterRemoteSystem, error) {
	env, err := newEnvelope(target, sender)
	if err != nil {
		return nil, err
	}
	return &RegisterRemoteSystem{envelope: env, SystemAddress: system}, nil
}

func (*RegisterRemoteSystem) Variant() string { return "RegisterRemoteSystem" }

// UnRegisterRemoteSystem forgets a remote actor system
type UnRegisterRemoteSystem struct {
	envelope
	SystemAddress address.Address
}

// NewUnRegisterRemoteSystem creates an UnRegisterRemoteSystem message
func NewUnRegisterRemoteSystem(system, target, sender address.Address) (*UnRegisterRemoteSystem, error) {
	env, err := newEnvelope(target, sender)
	if err != nil {
		return nil, err
	}
	return &UnRegisterRemoteSystem{envelope: env, SystemAddress: system}, nil
}

func (*UnRegisterRemoteSystem) Variant() string { return "UnRegisterRemoteSystem" }

// Application carries a user payload. The payload must be a proto.Message
// to travel across hosts.
type Application struct {
	envelope
	Payload any
}

// NewApplication creates an Application message
func NewApplication(payload any, target, sender address.Address) (*Application, error) {
	env, err := newEnvelope(target, sender)
	if err != nil {
		return nil, err
	}
	return &Application{envelope: env, Payload: payload}, nil
}

func (*Application) Variant() string { return "Application" }

// PayloadType returns the Go type name of the payload
func (a *Application) PayloadType() string {
	if a.Payload == nil {
		return "<nil>"
	}
	return reflect.TypeOf(a.Payload).String()
}

// IsControl reports whether the message travels on the control channel
func IsControl(msg Message) bool {
	switch msg.(type) {
	case *StopActor, *ActorCleanup, *SetActorStatus:
		return true
	default:
		return false
	}
}
