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
	"regexp"
	"slices"
	"strings"
	"sync"
	"time"

	otelmetric "go.opentelemetry.io/otel/metric"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/neuroph12/CompAktor/address"
	"github.com/neuroph12/CompAktor/convention"
	cerrors "github.com/neuroph12/CompAktor/errors"
	"github.com/neuroph12/CompAktor/internal/metric"
	"github.com/neuroph12/CompAktor/internal/tcp"
	"github.com/neuroph12/CompAktor/internal/validation"
	"github.com/neuroph12/CompAktor/log"
	"github.com/neuroph12/CompAktor/message"
)

const (
	// DefaultHost is the host used when none is set
	DefaultHost = "127.0.0.1"
	// DefaultShutdownTimeout bounds Stop
	DefaultShutdownTimeout = 5 * time.Second
)

var systemNamePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-_]*$`)

// ActorSystem hosts the Registry, routes messages and tracks the convention state.
//
// It is itself a networked actor living at the "system" path. Its receive
// contract is limited to convention traffic: SetConventionLeader,
// RegisterRemoteSystem and UnRegisterRemoteSystem.
type ActorSystem struct {
	name            string
	host            string
	port            int
	address         address.Address
	logger          log.Logger
	maxThreads      int64
	shutdownTimeout time.Duration
	actorConfig     message.ActorConfig

	workers   *workerPool
	registry  *Registry
	self      *PID
	transport Transport
	networked *NetworkedActor

	conventionProvider convention.Provider
	coordinator        *convention.Coordinator

	meterProvider otelmetric.MeterProvider
	meter         otelmetric.Meter
	metrics       *metric.ActorSystemMetric
	registration  otelmetric.Registration

	started *atomic.Bool
	stopped *atomic.Bool

	conventionMu     sync.RWMutex
	isLeader         bool
	conventionLeader address.Address
	remoteSystems    map[string]address.Address
}

// NewActorSystem creates an actor system. Call Start before sending messages.
func NewActorSystem(name string, opts ...Option) (*ActorSystem, error) {
	if strings.TrimSpace(name) == "" {
		return nil, cerrors.ErrNameRequired
	}

	system := &ActorSystem{
		name:            name,
		host:            DefaultHost,
		logger:          log.DefaultLogger,
		maxThreads:      DefaultMaxThreads,
		shutdownTimeout: DefaultShutdownTimeout,
		actorConfig:     message.DefaultActorConfig(),
		started:         atomic.NewBool(false),
		stopped:         atomic.NewBool(false),
		remoteSystems:   make(map[string]address.Address),
	}

	for _, opt := range opts {
		opt.Apply(system)
	}

	if err := validation.New(validation.FailFast()).
		AddValidator(validation.NewPatternValidator(systemNamePattern, name, fmt.Errorf("invalid actor system name %q", name))).
		AddValidator(validation.NewTCPAddressValidator(fmt.Sprintf("%s:%d", system.host, system.port))).
		AddAssertion(system.shutdownTimeout > 0, "shutdown timeout must be greater than zero").
		Validate(); err != nil {
		return nil, err
	}

	host, err := tcp.ResolveHost(system.host)
	if err != nil {
		return nil, err
	}

	system.meter = metric.Meter(system.meterProvider)
	if system.metrics, err = metric.NewActorSystemMetric(system.meter); err != nil {
		return nil, fmt.Errorf("failed to create actor system metrics: %w", err)
	}

	system.host = host
	system.address = address.New(host, system.port, address.SystemPath)
	system.logger = system.logger.With("system", name)
	system.workers = newWorkerPool(system.maxThreads)
	system.registry = newRegistry(system)
	system.self = newReceiverPID(system, system.address, system.receive)
	return system, nil
}

// Name returns the actor system name
func (s *ActorSystem) Name() string {
	return s.name
}

// Address returns the Address of the actor system
func (s *ActorSystem) Address() address.Address {
	return s.address
}

// Host returns the host of the actor system
func (s *ActorSystem) Host() string {
	return s.host
}

// Port returns the port of the actor system
func (s *ActorSystem) Port() int {
	return s.port
}

// Logger returns the actor system logger
func (s *ActorSystem) Logger() log.Logger {
	return s.logger
}

// Registry returns the actor registry
func (s *ActorSystem) Registry() *Registry {
	return s.registry
}

// Running reports whether the actor system is started
func (s *ActorSystem) Running() bool {
	return s.started.Load()
}

// Start starts the transport, the metrics and the convention coordinator.
// An actor system cannot be started again once stopped.
func (s *ActorSystem) Start(ctx context.Context) error {
	if s.stopped.Load() {
		return cerrors.ErrActorSystemStopped
	}

	if !s.started.CompareAndSwap(false, true) {
		return cerrors.ErrActorSystemAlreadyStarted
	}

	if err := s.setupMetrics(); err != nil {
		s.started.Store(false)
		return err
	}

	if s.transport != nil {
		s.networked = NewNetworkedActor(s.self, s.transport, s.route, s.logger)
		if err := s.networked.Start(ctx); err != nil {
			s.started.Store(false)
			return fmt.Errorf("failed to start transport: %w", err)
		}
	}

	if s.conventionProvider != nil {
		s.coordinator = convention.NewCoordinator(s.conventionProvider, s, s.logger)
		if err := s.coordinator.Start(ctx, s.address); err != nil {
			s.started.Store(false)
			return multierr.Append(fmt.Errorf("failed to start convention: %w", err), s.stopTransport(ctx))
		}
	}

	s.logger.Infof("actor system %s started at %s", s.name, s.address)
	return nil
}

// Stop stops every actor, releases the registry and closes the transport.
// Stop is terminal.
func (s *ActorSystem) Stop(ctx context.Context) error {
	if !s.started.CompareAndSwap(true, false) {
		return cerrors.ErrActorSystemNotStarted
	}
	s.stopped.Store(true)

	ctx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()

	var err error
	if s.coordinator != nil {
		err = multierr.Append(err, s.coordinator.Stop(ctx))
	}

	eg, egCtx := errgroup.WithContext(ctx)
	for _, pid := range s.registry.PIDs() {
		eg.Go(func() error {
			return pid.shutdown(egCtx)
		})
	}
	err = multierr.Append(err, eg.Wait())

	for _, pid := range s.registry.PIDs() {
		s.registry.ActorCleanup(pid.Address())
	}

	err = multierr.Append(err, s.stopTransport(ctx))

	s.registry.self.dispose()
	s.self.dispose()
	s.workers.wait()

	if s.registration != nil {
		err = multierr.Append(err, s.registration.Unregister())
		s.registration = nil
	}

	s.resetConvention()
	s.logger.Infof("actor system %s stopped", s.name)
	return err
}

func (s *ActorSystem) stopTransport(ctx context.Context) error {
	if s.networked == nil {
		return nil
	}
	return s.networked.Stop(ctx)
}

// Tell routes a message to its target: the actor system, the registry,
// a local actor or a remote actor system
func (s *ActorSystem) Tell(ctx context.Context, msg message.Message) error {
	if !s.started.Load() {
		return cerrors.ErrActorSystemNotStarted
	}
	return s.route(ctx, msg)
}

func (s *ActorSystem) route(ctx context.Context, msg message.Message) error {
	target := msg.Target()
	if !target.SameEndpoint(s.address) {
		if s.networked == nil {
			return cerrors.ErrRemotingDisabled
		}
		return s.networked.Send(ctx, msg)
	}

	switch target.Path() {
	case address.SystemPath:
		return s.self.enqueue(msg)
	case address.RegistryPath:
		return s.registry.self.enqueue(msg)
	}

	pid, ok := s.registry.Lookup(target)
	if !ok {
		err := cerrors.NewUnknownActorError(target)
		s.logger.With("variant", msg.Variant(), "target", target.String(), "sender", msg.Sender().String()).
			Warnf("dead letter: %v", err)
		return err
	}
	return pid.enqueue(msg)
}

// Register makes an actor kind available to CreateActor and returns its kind name
func (s *ActorSystem) Register(actor Actor) string {
	return s.registry.Register(actor)
}

// CreateActor instantiates a registered kind. parent may be address.NoSender().
func (s *ActorSystem) CreateActor(ctx context.Context, kind string, config message.ActorConfig, parent address.Address) (address.Address, error) {
	if !s.started.Load() {
		return address.NoSender(), cerrors.ErrActorSystemNotStarted
	}
	return s.registry.CreateActor(ctx, kind, config, parent)
}

// Spawn registers a ready actor instance with the default actor configuration
func (s *ActorSystem) Spawn(ctx context.Context, actor Actor, parent address.Address) (address.Address, error) {
	if !s.started.Load() {
		return address.NoSender(), cerrors.ErrActorSystemNotStarted
	}
	return s.registry.Spawn(ctx, actor, s.actorConfig, parent)
}

// RegisterActor records the status of an existing actor
func (s *ActorSystem) RegisterActor(addr address.Address, status message.Status) error {
	return s.registry.RegisterActor(addr, status)
}

// RemoveActor drops the actor from the lookup table
func (s *ActorSystem) RemoveActor(addr address.Address) {
	s.registry.RemoveActor(addr)
}

// ActorCleanup destroys the actor and its subtree
func (s *ActorSystem) ActorCleanup(addr address.Address) {
	s.registry.ActorCleanup(addr)
}

// AddChild links child to parent
func (s *ActorSystem) AddChild(parent, child address.Address) error {
	return s.registry.AddChild(parent, child)
}

// RemoveChild unlinks child from parent
func (s *ActorSystem) RemoveChild(parent, child address.Address) error {
	return s.registry.RemoveChild(parent, child)
}

// SetActorStatus overwrites the status of an actor
func (s *ActorSystem) SetActorStatus(addr address.Address, status message.Status) {
	s.registry.SetActorStatus(addr, status)
}

// StopActor sends StopActor to a local actor
func (s *ActorSystem) StopActor(target address.Address) error {
	return s.registry.StopActor(target)
}

// Lookup returns the local PID at the given Address
func (s *ActorSystem) Lookup(addr address.Address) (*PID, bool) {
	return s.registry.Lookup(addr)
}

// IsConventionLeader reports whether this actor system is the convention leader
func (s *ActorSystem) IsConventionLeader() bool {
	s.conventionMu.RLock()
	defer s.conventionMu.RUnlock()
	return s.isLeader
}

// ConventionLeader returns the last announced convention leader
func (s *ActorSystem) ConventionLeader() (address.Address, bool) {
	s.conventionMu.RLock()
	defer s.conventionMu.RUnlock()
	return s.conventionLeader, !s.conventionLeader.IsNoSender()
}

// RemoteSystems returns the known remote actor systems sorted by canonical form
func (s *ActorSystem) RemoteSystems() []address.Address {
	s.conventionMu.RLock()
	keys := make([]string, 0, len(s.remoteSystems))
	for key := range s.remoteSystems {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	out := make([]address.Address, 0, len(keys))
	for _, key := range keys {
		out = append(out, s.remoteSystems[key])
	}
	s.conventionMu.RUnlock()
	return out
}

// receive is the handler of the actor system dispatch loop
func (s *ActorSystem) receive(_ context.Context, msg message.Message) error {
	switch m := msg.(type) {
	case *message.SetConventionLeader:
		s.handleSetConventionLeader(m)
	case *message.RegisterRemoteSystem:
		s.handleRegisterRemoteSystem(m)
	case *message.UnRegisterRemoteSystem:
		s.handleUnRegisterRemoteSystem(m)
	default:
		return cerrors.NewUnhandledMessageError(msg.Variant(), s.address)
	}
	return nil
}

// handleSetConventionLeader applies the announcement. Last write wins.
// An empty host and port default to the endpoint of the announced actor.
func (s *ActorSystem) handleSetConventionLeader(msg *message.SetConventionLeader) {
	host, port := msg.Host, msg.Port
	if host == "" && port == 0 {
		host, port = msg.ActorAddress.Host(), msg.ActorAddress.Port()
	}

	s.conventionMu.Lock()
	s.conventionLeader = msg.ActorAddress
	s.isLeader = host == s.host && port == s.port
	s.conventionMu.Unlock()

	s.logger.Infof("convention leader set to %s (leader=%t)", msg.ActorAddress, s.IsConventionLeader())
}

func (s *ActorSystem) handleRegisterRemoteSystem(msg *message.RegisterRemoteSystem) {
	system := msg.SystemAddress
	if system.IsNoSender() || system.SameEndpoint(s.address) {
		return
	}

	s.conventionMu.Lock()
	s.remoteSystems[system.String()] = system
	s.conventionMu.Unlock()
}

func (s *ActorSystem) handleUnRegisterRemoteSystem(msg *message.UnRegisterRemoteSystem) {
	s.conventionMu.Lock()
	delete(s.remoteSystems, msg.SystemAddress.String())
	s.conventionMu.Unlock()
}

func (s *ActorSystem) resetConvention() {
	s.conventionMu.Lock()
	s.isLeader = false
	s.conventionLeader = address.NoSender()
	clear(s.remoteSystems)
	s.conventionMu.Unlock()
}

func (s *ActorSystem) setupMetrics() error {
	metrics := s.metrics
	registration, err := s.meter.RegisterCallback(func(_ context.Context, observer otelmetric.Observer) error {
		observer.ObserveInt64(metrics.ActorsCount(), int64(s.registry.Len()))
		observer.ObserveInt64(metrics.RemoteSystemsCount(), int64(len(s.RemoteSystems())))
		return nil
	}, metrics.ActorsCount(), metrics.RemoteSystemsCount())
	if err != nil {
		return fmt.Errorf("failed to register actor system metrics: %w", err)
	}

	s.registration = registration
	return nil
}

func (s *ActorSystem) recordProcessed(ctx context.Context, variant string) {
	s.metrics.ProcessedCount().Add(ctx, 1, variantAttribute(variant))
}

func (s *ActorSystem) recordUnhandled(ctx context.Context, variant string) {
	s.metrics.UnhandledCount().Add(ctx, 1, variantAttribute(variant))
}

// isUnhandled reports whether err signals a variant outside a receiver contract
func isUnhandled(err error) bool {
	var target *cerrors.UnhandledMessageError
	return errors.As(err, &target)
}
