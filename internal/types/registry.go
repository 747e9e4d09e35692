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

// Package types keeps a name to type index so that an actor kind sent over
// the wire can be instantiated on the receiving host.
package types

import (
	"reflect"
	"strings"
	"sync"
)

// Registry maps kind names to concrete types
type Registry interface {
	// Register records the type of v under its kind name
	Register(v any)
	// Deregister forgets the type of v
	Deregister(v any)
	// Exists reports whether the type of v is registered
	Exists(v any) bool
	// TypeOf returns the type registered under name
	TypeOf(name string) (reflect.Type, bool)
	// New allocates a fresh zero instance of the type registered under name
	New(name string) (any, bool)
	// Names returns the registered kind names
	Names() []string
}

type registry struct {
	mu    sync.RWMutex
	types map[string]reflect.Type
}

var _ Registry = (*registry)(nil)

// NewRegistry creates a new types registry
func NewRegistry() Registry {
	return &registry{types: make(map[string]reflect.Type)}
}

func (r *registry) Register(v any) {
	rtype := reflectType(v)
	r.mu.Lock()
	r.types[Name(v)] = rtype
	r.mu.Unlock()
}

func (r *registry) Deregister(v any) {
	r.mu.Lock()
	delete(r.types, Name(v))
	r.mu.Unlock()
}

func (r *registry) Exists(v any) bool {
	r.mu.RLock()
	_, ok := r.types[Name(v)]
	r.mu.RUnlock()
	return ok
}

func (r *registry) TypeOf(name string) (reflect.Type, bool) {
	r.mu.RLock()
	rtype, ok := r.types[normalize(name)]
	r.mu.RUnlock()
	return rtype, ok
}

func (r *registry) New(name string) (any, bool) {
	rtype, ok := r.TypeOf(name)
	if !ok {
		return nil, false
	}
	return reflect.New(rtype).Interface(), true
}

func (r *registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	return names
}

// reflectType returns the element type of a pointer or the type itself
func reflectType(v any) reflect.Type {
	if rtype, ok := v.(reflect.Type); ok {
		return rtype
	}
	rtype := reflect.TypeOf(v)
	if rtype.Kind() == reflect.Pointer {
		return rtype.Elem()
	}
	return rtype
}

// Name returns the kind name of v
func Name(v any) string {
	return normalize(reflectType(v).String())
}

func normalize(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
