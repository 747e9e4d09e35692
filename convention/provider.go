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

// Package convention lets actor systems running on different hosts discover
// each other and agree on a convention leader.
//
// Membership comes from a Provider. The Coordinator turns the membership view
// into RegisterRemoteSystem, UnRegisterRemoteSystem and SetConventionLeader
// messages for the local actor system. Leadership is best-effort: every node
// with the same view elects the same leader, with no quorum involved.
package convention

import (
	"context"

	"github.com/neuroph12/CompAktor/address"
)

// EventType defines the kind of membership change
type EventType int

const (
	// MemberJoined is emitted when a remote actor system becomes reachable
	MemberJoined EventType = iota
	// MemberLeft is emitted when a remote actor system goes away
	MemberLeft
)

// String returns the event type name
func (t EventType) String() string {
	switch t {
	case MemberJoined:
		return "MemberJoined"
	case MemberLeft:
		return "MemberLeft"
	default:
		return "Unknown"
	}
}

// Event is a membership change. Member is the system Address of the remote actor system.
type Event struct {
	Type   EventType
	Member address.Address
}

// Provider discovers remote actor systems
type Provider interface {
	// ID returns the provider name
	ID() string
	// Start joins the membership with the given local system Address
	Start(ctx context.Context, self address.Address) error
	// Watch returns the membership events. The channel is closed by Stop.
	Watch() <-chan Event
	// Stop leaves the membership
	Stop(ctx context.Context) error
}
