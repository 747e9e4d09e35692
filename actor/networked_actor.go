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

	"github.com/neuroph12/CompAktor/address"
	"github.com/neuroph12/CompAktor/log"
	"github.com/neuroph12/CompAktor/message"
)

// NetworkedActor fronts a PID with a Transport bound to a host and port.
//
// Inbound messages decoded by the Transport enter the same routing path as
// local messages, so local and remote senders are indistinguishable once
// decoded. Connection admission is the Transport's concern.
type NetworkedActor struct {
	pid       *PID
	transport Transport
	route     func(ctx context.Context, msg message.Message) error
	logger    log.Logger
}

// NewNetworkedActor binds pid to transport. route delivers inbound messages.
func NewNetworkedActor(pid *PID, transport Transport, route func(ctx context.Context, msg message.Message) error, logger log.Logger) *NetworkedActor {
	return &NetworkedActor{
		pid:       pid,
		transport: transport,
		route:     route,
		logger:    logger,
	}
}

// PID returns the fronted PID
func (n *NetworkedActor) PID() *PID {
	return n.pid
}

// Host returns the host the actor is bound to
func (n *NetworkedActor) Host() string {
	return n.pid.Address().Host()
}

// Port returns the port the actor is bound to
func (n *NetworkedActor) Port() int {
	return n.pid.Address().Port()
}

// Transport returns the underlying transport
func (n *NetworkedActor) Transport() Transport {
	return n.transport
}

// Start begins accepting inbound messages
func (n *NetworkedActor) Start(ctx context.Context) error {
	return n.transport.Listen(ctx, n.deliver)
}

// Send hands an outbound message to the transport
func (n *NetworkedActor) Send(ctx context.Context, msg message.Message) error {
	return n.transport.Send(ctx, msg)
}

// Stop closes the transport
func (n *NetworkedActor) Stop(ctx context.Context) error {
	return n.transport.Close(ctx)
}

func (n *NetworkedActor) deliver(ctx context.Context, msg message.Message) {
	if !n.hosts(msg.Target()) {
		n.logger.Warnf("dropping inbound %s for %s: not hosted at %s", msg.Variant(), msg.Target(), n.pid.Address().HostPort())
		return
	}

	if err := n.route(ctx, msg); err != nil {
		n.logger.With("variant", msg.Variant(), "target", msg.Target().String(), "sender", msg.Sender().String()).
			Warnf("failed to deliver inbound message: %v", err)
	}
}

// hosts reports whether addr lives on the endpoint of the actor
func (n *NetworkedActor) hosts(addr address.Address) bool {
	return addr.SameEndpoint(n.pid.Address())
}
