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
	"fmt"
	"net"

	"github.com/neuroph12/CompAktor/errors"
)

// Security decides whether an inbound connection is admitted.
// A rejected connection is closed before any frame is read.
type Security interface {
	Admit(conn net.Conn) error
}

// SecurityFunc adapts a function to the Security interface
type SecurityFunc func(conn net.Conn) error

// Admit implements Security
func (f SecurityFunc) Admit(conn net.Conn) error {
	return f(conn)
}

// AllowAll admits every connection
func AllowAll() Security {
	return SecurityFunc(func(net.Conn) error { return nil })
}

type allowList struct {
	networks []*net.IPNet
}

// NewAllowList admits connections whose remote IP belongs to one of the CIDR blocks
func NewAllowList(cidrs ...string) (Security, error) {
	networks := make([]*net.IPNet, 0, len(cidrs))
	for _, cidr := range cidrs {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			return nil, fmt.Errorf("invalid CIDR %q: %w", cidr, err)
		}
		networks = append(networks, network)
	}
	return &allowList{networks: networks}, nil
}

func (a *allowList) Admit(conn net.Conn) error {
	host, _, err := net.SplitHostPort(conn.RemoteAddr().String())
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrAccessDenied, err)
	}

	ip := net.ParseIP(host)
	for _, network := range a.networks {
		if ip != nil && network.Contains(ip) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s is not allowed", errors.ErrAccessDenied, host)
}
