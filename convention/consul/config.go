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

package consul

import (
	"time"

	"github.com/neuroph12/CompAktor/internal/validation"
)

const (
	// DefaultAddress is the address of a local Consul agent
	DefaultAddress = "127.0.0.1:8500"
	// DefaultWaitTime bounds a single blocking query
	DefaultWaitTime = 5 * time.Second
	// DefaultRetryInterval is the pause after a failed query
	DefaultRetryInterval = time.Second
)

// Config represents the Consul provider configuration
type Config struct {
	// Address is the address of the Consul agent
	Address string
	// Datacenter specifies the Consul datacenter. The agent's one is used when empty.
	Datacenter string
	// Token is the Consul ACL token
	Token string
	// ActorSystemName is the service name every actor system of the convention registers under
	ActorSystemName string
	// OnlyPassing restricts the members to services with a passing health check
	OnlyPassing bool
	// WaitTime bounds a single blocking query
	WaitTime time.Duration
	// RetryInterval is the pause after a failed query
	RetryInterval time.Duration
	// HealthCheck registers a TCP check against the actor system endpoint. Nil disables it.
	HealthCheck *HealthCheck
}

// HealthCheck defines the Consul TCP check of a registered actor system
type HealthCheck struct {
	Interval time.Duration
	Timeout  time.Duration
}

// Validate checks whether the given configuration is valid
func (x Config) Validate() error {
	chain := validation.New(validation.FailFast()).
		AddValidator(validation.NewEmptyStringValidator("ActorSystemName", x.ActorSystemName)).
		AddValidator(validation.NewEmptyStringValidator("Address", x.Address)).
		AddAssertion(x.WaitTime >= 0, "WaitTime is invalid").
		AddAssertion(x.RetryInterval >= 0, "RetryInterval is invalid")

	if x.HealthCheck != nil {
		chain = chain.
			AddAssertion(x.HealthCheck.Interval > 0, "HealthCheck.Interval is invalid").
			AddAssertion(x.HealthCheck.Timeout > 0, "HealthCheck.Timeout is invalid")
	}
	return chain.Validate()
}

func (x Config) withDefaults() Config {
	if x.Address == "" {
		x.Address = DefaultAddress
	}
	if x.WaitTime == 0 {
		x.WaitTime = DefaultWaitTime
	}
	if x.RetryInterval == 0 {
		x.RetryInterval = DefaultRetryInterval
	}
	return x
}
