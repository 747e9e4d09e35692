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

// Package address provides the canonical representation of an actor location.
//
// An Address is made of three parts:
//
//   - Host: network host or IP where the actor system is reachable
//   - Port: TCP port where the actor system is reachable
//   - Path: name of the actor inside that system
//
// The canonical textual representation of an Address is:
//
//	compaktor://<host>:<port>/<path>
//
// Address is an immutable value: two Addresses are equal when all their parts
// are equal, which makes them usable as map keys.
package address

import (
	"errors"
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"

	"github.com/neuroph12/CompAktor/internal/validation"
)

const (
	scheme = "compaktor"
	// SystemPath is the reserved path of the actor system receiver
	SystemPath = "system"
	// RegistryPath is the reserved path of the actor registry receiver
	RegistryPath = "registry"
)

var pathPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-_.]*$`)

// Address identifies an actor by its host, port and path
type Address struct {
	host string
	port int
	path string
}

var _ validation.Validator = Address{}

// New creates an Address. New never fails; call Validate to check the parts.
func New(host string, port int, path string) Address {
	return Address{host: host, port: port, path: path}
}

// NoSender returns the anonymous Address used when a message has no sender
func NoSender() Address {
	return Address{}
}

// Host returns the host part
func (a Address) Host() string {
	return a.host
}

// Port returns the port part
func (a Address) Port() int {
	return a.port
}

// Path returns the path part
func (a Address) Path() string {
	return a.path
}

// HostPort returns host:port
func (a Address) HostPort() string {
	return net.JoinHostPort(a.host, strconv.Itoa(a.port))
}

// IsNoSender reports whether the Address is the anonymous one
func (a Address) IsNoSender() bool {
	return a == Address{}
}

// SameEndpoint reports whether both Addresses live on the same host and port
func (a Address) SameEndpoint(other Address) bool {
	return a.host == other.host && a.port == other.port
}

// WithPath returns a copy of the Address on the same endpoint with the given path
func (a Address) WithPath(path string) Address {
	return Address{host: a.host, port: a.port, path: path}
}

// Equals reports structural equality
func (a Address) Equals(other Address) bool {
	return a == other
}

// String returns the canonical string form
func (a Address) String() string {
	if a.IsNoSender() {
		return ""
	}
	return fmt.Sprintf("%s://%s/%s", scheme, a.HostPort(), a.path)
}

// Validate checks the Address parts. The anonymous Address is valid.
func (a Address) Validate() error {
	if a.IsNoSender() {
		return nil
	}
	return validation.
		New(validation.AllErrors()).
		AddValidator(validation.NewEmptyStringValidator("host", a.host)).
		AddValidator(validation.NewTCPAddressValidator(a.HostPort())).
		AddValidator(validation.NewPatternValidator(pathPattern, a.path, ErrInvalidPath)).
		Validate()
}

// Parse reads an Address from its canonical string form.
// An empty string yields the anonymous Address.
func Parse(s string) (Address, error) {
	if s == "" {
		return NoSender(), nil
	}

	rest, ok := strings.CutPrefix(s, scheme+"://")
	if !ok {
		return Address{}, fmt.Errorf("%w: missing %s scheme in (%s)", ErrInvalidAddress, scheme, s)
	}

	hostPort, path, ok := strings.Cut(rest, "/")
	if !ok || path == "" {
		return Address{}, fmt.Errorf("%w: missing path in (%s)", ErrInvalidAddress, s)
	}

	host, portStr, err := net.SplitHostPort(hostPort)
	if err != nil {
		return Address{}, errors.Join(ErrInvalidAddress, err)
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return Address{}, errors.Join(ErrInvalidAddress, err)
	}

	addr := New(host, port, path)
	if err := addr.Validate(); err != nil {
		return Address{}, errors.Join(ErrInvalidAddress, err)
	}
	return addr, nil
}
