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

package metric

import "go.opentelemetry.io/otel/metric"

// ActorSystemMetric groups the OpenTelemetry instruments of an actor system.
//
// Instruments:
//   - actorsystem.actors.count          (Int64ObservableGauge)
//   - actorsystem.remote_systems.count  (Int64ObservableGauge)
//   - actorsystem.messages.processed    (Int64Counter)
//   - actorsystem.messages.unhandled    (Int64Counter)
type ActorSystemMetric struct {
	actorsCount        metric.Int64ObservableGauge
	remoteSystemsCount metric.Int64ObservableGauge
	processedCount     metric.Int64Counter
	unhandledCount     metric.Int64Counter
}

// NewActorSystemMetric creates the instruments using the provided Meter.
// It returns an error if any instrument cannot be created.
func NewActorSystemMetric(meter metric.Meter) (*ActorSystemMetric, error) {
	var instruments ActorSystemMetric
	var err error

	if instruments.actorsCount, err = meter.Int64ObservableGauge(
		"actorsystem.actors.count",
		metric.WithDescription("Total number of actors in the registry"),
	); err != nil {
		return nil, err
	}

	if instruments.remoteSystemsCount, err = meter.Int64ObservableGauge(
		"actorsystem.remote_systems.count",
		metric.WithDescription("Total number of known remote actor systems"),
	); err != nil {
		return nil, err
	}

	if instruments.processedCount, err = meter.Int64Counter(
		"actorsystem.messages.processed",
		metric.WithDescription("Total number of messages handled by dispatch loops"),
	); err != nil {
		return nil, err
	}

	if instruments.unhandledCount, err = meter.Int64Counter(
		"actorsystem.messages.unhandled",
		metric.WithDescription("Total number of messages that failed at a dispatch loop"),
	); err != nil {
		return nil, err
	}

	return &instruments, nil
}

// ActorsCount returns the gauge reporting the registry size.
// Use with Meter.RegisterCallback.
func (x *ActorSystemMetric) ActorsCount() metric.Int64ObservableGauge {
	return x.actorsCount
}

// RemoteSystemsCount returns the gauge reporting the known remote systems
func (x *ActorSystemMetric) RemoteSystemsCount() metric.Int64ObservableGauge {
	return x.remoteSystemsCount
}

// ProcessedCount returns the processed messages counter
func (x *ActorSystemMetric) ProcessedCount() metric.Int64Counter {
	return x.processedCount
}

// UnhandledCount returns the unhandled messages counter
func (x *ActorSystemMetric) UnhandledCount() metric.Int64Counter {
	return x.unhandledCount
}
