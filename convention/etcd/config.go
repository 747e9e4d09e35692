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

package etcd

import (
	"crypto/tls"
	"time"

	"github.com/neuroph12/CompAktor/internal/validation"
)

const (
	// DefaultTTL is the registration lease time-to-live in seconds
	DefaultTTL int64 = 10
	// DefaultDialTimeout bounds the connection to the etcd cluster
	DefaultDialTimeout = 5 * time.Second
	// DefaultTimeout bounds a single etcd operation
	DefaultTimeout = 5 * time.Second
)

// Config represents the etcd provider configuration
type Config struct {
	// Endpoints is the list of etcd cluster endpoints
	Endpoints []string
	// ActorSystemName namespaces the registrations of the convention
	ActorSystemName string
	// TTL is the registration lease time-to-live in seconds.
	// A crashed actor system leaves once its lease expires.
	TTL int64
	// DialTimeout bounds the connection to the etcd cluster
	DialTimeout time.Duration
	// Timeout bounds a single etcd operation
	Timeout time.Duration
	// TLS is the optional client TLS configuration
	TLS *tls.Config
	// Username and Password are the optional etcd credentials
	Username string
	Password string
}

// Validate checks whether the given configuration is valid
func (x Config) Validate() error {
	return validation.New(validation.FailFast()).
		AddValidator(validation.NewEmptyStringValidator("ActorSystemName", x.ActorSystemName)).
		AddAssertion(len(x.Endpoints) > 0, "Endpoints must not be empty").
		AddAssertion(x.TTL > 0, "TTL must be greater than 0").
		AddAssertion(x.DialTimeout > 0, "DialTimeout must be greater than 0").
		AddAssertion(x.Timeout > 0, "Timeout must be greater than 0").
		Validate()
}

func (x Config) withDefaults() Config {
	if x.TTL == 0 {
		x.TTL = DefaultTTL
	}
	if x.DialTimeout == 0 {
		x.DialTimeout = DefaultDialTimeout
	}
	if x.Timeout == 0 {
		x.Timeout = DefaultTimeout
	}
	return x
}
