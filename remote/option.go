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

package remote

import (
	"crypto/tls"
	"time"

	"github.com/neuroph12/CompAktor/log"
)

// Option is the interface that applies a configuration option.
type Option interface {
	// Apply sets the Option value of a config.
	Apply(*Config)
}

// enforce compilation error
var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(config *Config)

func (f OptionFunc) Apply(c *Config) {
	f(c)
}

// WithCompression sets the compression algorithm
func WithCompression(compression Compression) Option {
	return OptionFunc(func(config *Config) {
		config.compression = compression
	})
}

// WithTLS enables TLS on both the listener and the outbound connections
func WithTLS(server, client *tls.Config) Option {
	return OptionFunc(func(config *Config) {
		config.serverTLS = server
		config.clientTLS = client
	})
}

// WithMaxFrameSize sets the largest accepted frame payload in bytes
func WithMaxFrameSize(size int) Option {
	return OptionFunc(func(config *Config) {
		config.maxFrameSize = size
	})
}

// WithDialTimeout sets the dial timeout
func WithDialTimeout(timeout time.Duration) Option {
	return OptionFunc(func(config *Config) {
		config.dialTimeout = timeout
	})
}

// WithDialRetries sets the number of dial attempts
func WithDialRetries(retries int) Option {
	return OptionFunc(func(config *Config) {
		config.dialRetries = retries
	})
}

// WithWriteTimeout sets the write timeout. Zero disables it.
func WithWriteTimeout(timeout time.Duration) Option {
	return OptionFunc(func(config *Config) {
		config.writeTimeout = timeout
	})
}

// WithSecurity sets the connection admission gate
func WithSecurity(security Security) Option {
	return OptionFunc(func(config *Config) {
		config.security = security
	})
}

// WithLogger sets the transport logger
func WithLogger(logger log.Logger) Option {
	return OptionFunc(func(config *Config) {
		config.logger = logger
	})
}
