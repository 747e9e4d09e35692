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

package gossip

import (
	"net"
	"strconv"
	"time"

	"github.com/neuroph12/CompAktor/internal/validation"
)

// Config represents the gossip provider configuration
type Config struct {
	// BindAddr is the gossip bind address
	BindAddr string
	// BindPort is the gossip bind port
	BindPort int
	// Peers defines the gossip addresses, in the form of host:port, of systems to join at start
	Peers []string
	// MaxJoinAttempts defines the number of join attempts
	MaxJoinAttempts int
	// JoinRetryInterval defines the delay between join attempts
	JoinRetryInterval time.Duration
	// LeaveTimeout bounds the graceful leave at stop
	LeaveTimeout time.Duration
}

// Validate checks whether the given configuration is valid
func (x Config) Validate() error {
	chain := validation.
		New(validation.FailFast()).
		AddValidator(validation.NewEmptyStringValidator("BindAddr", x.BindAddr)).
		AddValidator(validation.NewTCPAddressValidator(x.address())).
		AddAssertion(x.MaxJoinAttempts >= 0, "MaxJoinAttempts is invalid").
		AddAssertion(x.JoinRetryInterval >= 0, "JoinRetryInterval is invalid").
		AddAssertion(x.LeaveTimeout >= 0, "LeaveTimeout is invalid")

	for _, peer := range x.Peers {
		chain = chain.AddValidator(validation.NewTCPAddressValidator(peer))
	}
	return chain.Validate()
}

func (x Config) address() string {
	return net.JoinHostPort(x.BindAddr, strconv.Itoa(x.BindPort))
}

func (x Config) withDefaults() Config {
	if x.MaxJoinAttempts == 0 {
		x.MaxJoinAttempts = 5
	}
	if x.JoinRetryInterval == 0 {
		x.JoinRetryInterval = time.Second
	}
	if x.LeaveTimeout == 0 {
		x.LeaveTimeout = 5 * time.Second
	}
	return x
}
