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
	"time"

	otelmetric "go.opentelemetry.io/otel/metric"

	"github.com/neuroph12/CompAktor/convention"
	"github.com/neuroph12/CompAktor/log"
	"github.com/neuroph12/CompAktor/message"
)

// Option is the interface that applies a configuration option.
type Option interface {
	// Apply sets the Option value of a config.
	Apply(system *ActorSystem)
}

// enforce compilation error
var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(*ActorSystem)

func (f OptionFunc) Apply(system *ActorSystem) {
	f(system)
}

// WithLogger sets the actor system custom logger
func WithLogger(logger log.Logger) Option {
	return OptionFunc(func(system *ActorSystem) {
		system.logger = logger
	})
}

// WithHost sets the host of the actor system. 0.0.0.0 resolves to a private IP.
func WithHost(host string) Option {
	return OptionFunc(func(system *ActorSystem) {
		system.host = host
	})
}

// WithPort sets the port of the actor system
func WithPort(port int) Option {
	return OptionFunc(func(system *ActorSystem) {
		system.port = port
	})
}

// WithMaxThreads caps the number of dispatch loops running at once
func WithMaxThreads(size int64) Option {
	return OptionFunc(func(system *ActorSystem) {
		system.maxThreads = size
	})
}

// WithTransport enables remoting through the given transport
func WithTransport(transport Transport) Option {
	return OptionFunc(func(system *ActorSystem) {
		system.transport = transport
	})
}

// WithConvention enables remote system discovery and leader election
func WithConvention(provider convention.Provider) Option {
	return OptionFunc(func(system *ActorSystem) {
		system.conventionProvider = provider
	})
}

// WithMeterProvider sets the OpenTelemetry meter provider
func WithMeterProvider(provider otelmetric.MeterProvider) Option {
	return OptionFunc(func(system *ActorSystem) {
		system.meterProvider = provider
	})
}

// WithShutdownTimeout bounds the time Stop waits for actors to stop
func WithShutdownTimeout(timeout time.Duration) Option {
	return OptionFunc(func(system *ActorSystem) {
		system.shutdownTimeout = timeout
	})
}

// WithActorConfig sets the default configuration of actors created without one
func WithActorConfig(config message.ActorConfig) Option {
	return OptionFunc(func(system *ActorSystem) {
		system.actorConfig = config
	})
}
