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

	"github.com/neuroph12/CompAktor/address"
	"github.com/neuroph12/CompAktor/errors"
	"github.com/neuroph12/CompAktor/message"
)

// ReceiveContext is handed to Actor.Receive for every application message
type ReceiveContext struct {
	ctx     context.Context
	message *message.Application
	self    *PID
	err     error
}

func newReceiveContext(ctx context.Context, self *PID, msg *message.Application) *ReceiveContext {
	return &ReceiveContext{ctx: ctx, message: msg, self: self}
}

// Context returns the context of the dispatch loop
func (rctx *ReceiveContext) Context() context.Context {
	return rctx.ctx
}

// Message returns the application payload
func (rctx *ReceiveContext) Message() any {
	return rctx.message.Payload
}

// Sender returns the sender Address, possibly address.NoSender()
func (rctx *ReceiveContext) Sender() address.Address {
	return rctx.message.Sender()
}

// Self returns the PID handling the message
func (rctx *ReceiveContext) Self() *PID {
	return rctx.self
}

// System returns the actor system hosting the actor
func (rctx *ReceiveContext) System() *ActorSystem {
	return rctx.self.system
}

// Tell sends payload to the given Address with the current actor as sender
func (rctx *ReceiveContext) Tell(to address.Address, payload any) error {
	msg, err := message.NewApplication(payload, to, rctx.self.Address())
	if err != nil {
		return err
	}
	return rctx.self.system.Tell(rctx.ctx, msg)
}

// Unhandled marks the payload as not understood by the actor
func (rctx *ReceiveContext) Unhandled() {
	variant := fmt.Sprintf("%s[%s]", rctx.message.Variant(), rctx.message.PayloadType())
	rctx.err = errors.NewUnhandledMessageError(variant, rctx.self.Address())
}

// Err records a handling failure. It is logged at the dispatch loop boundary.
func (rctx *ReceiveContext) Err(err error) {
	rctx.err = err
}

func (rctx *ReceiveContext) getError() error {
	return rctx.err
}
