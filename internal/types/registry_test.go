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

package types

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type worker struct {
	count int
}

func TestRegistry(t *testing.T) {
	registry := NewRegistry()
	registry.Register(new(worker))

	assert.True(t, registry.Exists(new(worker)))
	assert.Equal(t, "types.worker", Name(new(worker)))
	assert.Equal(t, []string{"types.worker"}, registry.Names())

	rtype, ok := registry.TypeOf(" Types.Worker ")
	require.True(t, ok)
	assert.Equal(t, reflect.TypeOf(worker{}), rtype)

	instance, ok := registry.New("types.worker")
	require.True(t, ok)
	actual, ok := instance.(*worker)
	require.True(t, ok)
	assert.Zero(t, actual.count)

	registry.Deregister(new(worker))
	assert.False(t, registry.Exists(new(worker)))
	_, ok = registry.New("types.worker")
	assert.False(t, ok)
}
