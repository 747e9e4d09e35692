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
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/flowchartsman/retry"
	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.uber.org/atomic"

	"github.com/neuroph12/CompAktor/address"
	cerrors "github.com/neuroph12/CompAktor/errors"
	"github.com/neuroph12/CompAktor/log"
	"github.com/neuroph12/CompAktor/message"
)

const (
	idle int32 = iota
	busy
)

// handlerFunc handles a message dequeued by a dispatch loop
type handlerFunc func(ctx context.Context, msg message.Message) error

// PID is a live actor: its Address, its two mailboxes and its dispatch loop.
//
// Parent and children links are only mutated by the Registry.
type PID struct {
	address address.Address
	kind    string
	actor   Actor
	config  message.ActorConfig
	system  *ActorSystem
	handler handlerFunc
	logger  log.Logger

	status     *atomic.Int32
	processing *atomic.Int32
	initNeeded *atomic.Bool
	disposed   *atomic.Bool

	control Mailbox
	inbox   Mailbox

	mu       sync.RWMutex
	parent   address.Address
	children mapset.Set[address.Address]

	stopOnce sync.Once
	stopped  chan struct{}
}

func newPID(system *ActorSystem, addr address.Address, kind string, actor Actor, config message.ActorConfig) *PID {
	pid := &PID{
		address:    addr,
		kind:       kind,
		actor:      actor,
		config:     config,
		system:     system,
		logger:     system.logger,
		status:     atomic.NewInt32(int32(message.StatusStarting)),
		processing: atomic.NewInt32(idle),
		initNeeded: atomic.NewBool(false),
		disposed:   atomic.NewBool(false),
		control:    NewUnboundedMailbox(),
		inbox:      newMailbox(config.MailboxCapacity),
		children:   mapset.NewSet[address.Address](),
		stopped:    make(chan struct{}),
	}
	pid.handler = pid.receive
	return pid
}

// newReceiverPID creates the PID of an internal receiver such as the
// registry or the actor system. It has no user Actor and starts Running.
func newReceiverPID(system *ActorSystem, addr address.Address, handler handlerFunc) *PID {
	pid := newPID(system, addr, addr.Path(), nil, message.ActorConfig{})
	pid.handler = handler
	pid.setStatus(message.StatusRunning)
	return pid
}

// Address returns the actor Address
func (pid *PID) Address() address.Address {
	return pid.address
}

// Kind returns the actor kind name
func (pid *PID) Kind() string {
	return pid.kind
}

// Config returns the creation settings of the actor
func (pid *PID) Config() message.ActorConfig {
	return pid.config
}

// Status returns the current lifecycle status
func (pid *PID) Status() message.Status {
	return message.Status(pid.status.Load())
}

// IsRunning reports whether the actor is Running
func (pid *PID) IsRunning() bool {
	return pid.Status() == message.StatusRunning
}

// Parent returns the parent Address when the actor has one
func (pid *PID) Parent() (address.Address, bool) {
	pid.mu.RLock()
	defer pid.mu.RUnlock()
	return pid.parent, !pid.parent.IsNoSender()
}

// Children returns the Addresses of the direct children
func (pid *PID) Children() []address.Address {
	return pid.children.ToSlice()
}

// MailboxSize returns the number of pending application messages
func (pid *PID) MailboxSize() int64 {
	return pid.inbox.Len()
}

func (pid *PID) setStatus(status message.Status) {
	pid.status.Store(int32(status))
}

func (pid *PID) setParent(parent address.Address) {
	pid.mu.Lock()
	pid.parent = parent
	pid.mu.Unlock()
}

// enqueue routes the message to the control or the application mailbox
// and schedules the dispatch loop
func (pid *PID) enqueue(msg message.Message) error {
	if pid.disposed.Load() {
		return cerrors.ErrMailboxDisposed
	}

	mailbox := pid.inbox
	if message.IsControl(msg) {
		mailbox = pid.control
	}

	if err := mailbox.Enqueue(msg); err != nil {
		pid.logger.Warnf("failed to enqueue %s into %s: %v", msg.Variant(), pid.address, err)
		return err
	}

	pid.process()
	return nil
}

// start signals the dispatch loop to run PreStart before anything else
func (pid *PID) start() {
	pid.initNeeded.Store(true)
	pid.process()
}

// process starts a dispatch loop when transitioning from idle to busy
func (pid *PID) process() {
	if !pid.processing.CompareAndSwap(idle, busy) {
		return
	}
	pid.system.workers.submit(pid.drain)
}

// drain runs the dispatch loop. Control messages always preempt application ones.
func (pid *PID) drain() {
	ctx := context.Background()
	for {
		if pid.initNeeded.CompareAndSwap(true, false) {
			pid.init(ctx)
		}

		for msg := pid.control.Dequeue(); msg != nil; msg = pid.control.Dequeue() {
			pid.dispatch(ctx, msg)
		}

		if msg := pid.inbox.Dequeue(); msg != nil {
			pid.dispatch(ctx, msg)
			continue
		}

		pid.processing.Store(idle)

		if (pid.initNeeded.Load() || !pid.control.IsEmpty() || !pid.inbox.IsEmpty()) &&
			pid.processing.CompareAndSwap(idle, busy) {
			continue
		}
		return
	}
}

// dispatch hands the message to the handler. Errors and panics stop at this boundary.
func (pid *PID) dispatch(ctx context.Context, msg message.Message) {
	defer pid.recovery(ctx, msg)
	if err := pid.handler(ctx, msg); err != nil {
		pid.reportError(ctx, msg, err)
		return
	}
	pid.system.recordProcessed(ctx, msg.Variant())
}

func (pid *PID) recovery(ctx context.Context, msg message.Message) {
	r := recover()
	if r == nil {
		return
	}

	pc, fn, line, _ := runtime.Caller(2)
	var err error
	switch v := r.(type) {
	case error:
		err = cerrors.NewPanicError(fmt.Errorf("%w at %s[%s:%d]", v, runtime.FuncForPC(pc).Name(), fn, line))
	default:
		err = cerrors.NewPanicError(fmt.Errorf("%#v at %s[%s:%d]", r, runtime.FuncForPC(pc).Name(), fn, line))
	}
	pid.reportError(ctx, msg, err)
}

func (pid *PID) reportError(ctx context.Context, msg message.Message, err error) {
	logger := pid.logger.With("variant", msg.Variant(), "target", msg.Target().String(), "error", err)
	if isUnhandled(err) {
		logger.Errorf("unhandled message at %s", pid.address)
	} else {
		logger.Errorf("failed to handle message at %s", pid.address)
	}
	pid.system.recordUnhandled(ctx, msg.Variant())
}

// receive is the handler of user actors
func (pid *PID) receive(ctx context.Context, msg message.Message) error {
	switch m := msg.(type) {
	case *message.StopActor:
		return pid.stop(ctx)
	case *message.Application:
		if pid.Status().IsTerminal() {
			pid.logger.Warnf("dropping %s sent to %s: actor is %s", m.PayloadType(), pid.address, pid.Status())
			return nil
		}
		received := newReceiveContext(ctx, pid, m)
		pid.actor.Receive(received)
		return received.getError()
	default:
		return cerrors.NewUnhandledMessageError(msg.Variant(), pid.address)
	}
}

// init runs PreStart with retries then marks the actor Running in the registry
func (pid *PID) init(ctx context.Context) {
	if pid.actor == nil {
		return
	}

	pid.logger.Debugf("initialization process started for actor %s", pid.address)

	timeout := pid.config.InitTimeout
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	retrier := retry.NewRetrier(pid.config.InitMaxRetries, time.Millisecond, timeout)
	err := retrier.RunContext(cctx, func(ctx context.Context) error {
		return pid.preStart(ctx)
	})
	if err != nil {
		pid.setStatus(message.StatusFailed)
		pid.logger.Errorf("failed to initialize actor %s: %v", pid.address, cerrors.NewErrInitFailure(err))
		return
	}

	if err := pid.system.registry.RegisterActor(pid.address, message.StatusRunning); err != nil {
		pid.logger.Warnf("actor %s initialized but is no longer registered: %v", pid.address, err)
		return
	}
	pid.logger.Debugf("actor %s initialization is successful", pid.address)
}

func (pid *PID) preStart(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = cerrors.NewPanicError(fmt.Errorf("%v", r))
		}
	}()
	return pid.actor.PreStart(ctx)
}

// stop drives the status to Stopping then Stopped around PostStop
func (pid *PID) stop(ctx context.Context) error {
	previous := pid.Status()
	if previous == message.StatusStopping || previous == message.StatusStopped {
		pid.markStopped()
		return nil
	}

	pid.setStatus(message.StatusStopping)
	defer pid.markStopped()

	if pid.actor == nil || previous == message.StatusFailed {
		return nil
	}

	if err := pid.postStop(ctx); err != nil {
		return fmt.Errorf("actor %s PostStop failed: %w", pid.address, err)
	}
	return nil
}

func (pid *PID) postStop(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = cerrors.NewPanicError(fmt.Errorf("%v", r))
		}
	}()
	return pid.actor.PostStop(ctx)
}

func (pid *PID) markStopped() {
	pid.setStatus(message.StatusStopped)
	pid.stopOnce.Do(func() { close(pid.stopped) })
}

// shutdown sends StopActor and waits until the actor is Stopped or ctx is done
func (pid *PID) shutdown(ctx context.Context) error {
	msg, err := message.NewStopActor(pid.address, pid.system.Address())
	if err != nil {
		return err
	}

	if err := pid.enqueue(msg); err != nil {
		if errors.Is(err, cerrors.ErrMailboxDisposed) {
			return nil
		}
		return err
	}

	select {
	case <-pid.stopped:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("actor %s did not stop: %w", pid.address, ctx.Err())
	}
}

// dispose releases both mailboxes. Later enqueues fail.
func (pid *PID) dispose() {
	if pid.disposed.CompareAndSwap(false, true) {
		pid.control.Dispose()
		pid.inbox.Dispose()
		pid.stopOnce.Do(func() { close(pid.stopped) })
	}
}

func variantAttribute(variant string) otelmetric.MeasurementOption {
	return otelmetric.WithAttributes(attribute.String("variant", variant))
}
