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
	"net"
	"strconv"
	"time"

	"github.com/neuroph12/CompAktor/internal/tcp"
	"github.com/neuroph12/CompAktor/internal/validation"
	"github.com/neuroph12/CompAktor/log"
)

// Config defines the TCP transport settings
type Config struct {
	bindAddr     string
	bindPort     int
	compression  Compression
	maxFrameSize int
	dialTimeout  time.Duration
	writeTimeout time.Duration
	keepAlive    time.Duration
	dialRetries  int
	serverTLS    *tls.Config
	clientTLS    *tls.Config
	security     Security
	logger       log.Logger
}

var _ validation.Validator = (*Config)(nil)

// NewConfig returns a Config for the given bind address and port.
// A 0.0.0.0 bind address is resolved to a private IP by Sanitize.
func NewConfig(bindAddr string, bindPort int, opts ...Option) *Config {
	config := &Config{
		bindAddr:     bindAddr,
		bindPort:     bindPort,
		compression:  ZstdCompression,
		maxFrameSize: tcp.DefaultMaxFrameSize,
		dialTimeout:  5 * time.Second,
		writeTimeout: 10 * time.Second,
		keepAlive:    15 * time.Second,
		dialRetries:  3,
		security:     AllowAll(),
		logger:       log.DefaultLogger,
	}

	for _, opt := range opts {
		opt.Apply(config)
	}
	return config
}

// BindAddr returns the bind address
func (x *Config) BindAddr() string {
	return x.bindAddr
}

// BindPort returns the bind port
func (x *Config) BindPort() int {
	return x.bindPort
}

// HostPort returns the bind address and port joined
func (x *Config) HostPort() string {
	return net.JoinHostPort(x.bindAddr, strconv.Itoa(x.bindPort))
}

// Compression returns the compression algorithm
func (x *Config) Compression() Compression {
	return x.compression
}

// MaxFrameSize returns the largest accepted frame payload
func (x *Config) MaxFrameSize() int {
	return x.maxFrameSize
}

// DialTimeout returns the dial timeout
func (x *Config) DialTimeout() time.Duration {
	return x.dialTimeout
}

// WriteTimeout returns the write timeout
func (x *Config) WriteTimeout() time.Duration {
	return x.writeTimeout
}

// Security returns the connection admission gate
func (x *Config) Security() Security {
	return x.security
}

// Sanitize resolves an unspecified bind address
func (x *Config) Sanitize() error {
	host, err := tcp.ResolveHost(x.bindAddr)
	if err != nil {
		return err
	}
	x.bindAddr = host
	return nil
}

// Validate checks the configuration
func (x *Config) Validate() error {
	return validation.
		New(validation.FailFast()).
		AddValidator(validation.NewEmptyStringValidator("bindAddr", x.bindAddr)).
		AddValidator(validation.NewTCPAddressValidator(x.HostPort())).
		AddAssertion(x.compression >= NoCompression && x.compression <= BrotliCompression, "invalid compression").
		AddAssertion(x.maxFrameSize >= 16<<10 && x.maxFrameSize <= tcp.DefaultMaxFrameSize, "maxFrameSize must be between 16KB and 16MB").
		AddAssertion(x.dialTimeout > 0, "dialTimeout must be greater than 0").
		AddAssertion(x.writeTimeout >= 0, "invalid write timeout").
		AddAssertion(x.dialRetries > 0, "dialRetries must be greater than 0").
		AddAssertion(x.security != nil, "security is required").
		AddAssertion(x.logger != nil, "logger is required").
		AddAssertion((x.serverTLS == nil) == (x.clientTLS == nil), "both server and client TLS configurations are required").
		Validate()
}
