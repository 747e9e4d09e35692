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

package validation

import (
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestChain(t *testing.T) {
	t.Run("With no violations", func(t *testing.T) {
		err := New().
			AddAssertion(true, "never").
			AddValidator(NewEmptyStringValidator("name", "actor")).
			AddValidator(NewTCPAddressValidator("127.0.0.1:9000")).
			Validate()
		require.NoError(t, err)
	})
	t.Run("With fail fast", func(t *testing.T) {
		err := New(FailFast()).
			AddAssertion(false, "first").
			AddAssertion(false, "second").
			Validate()
		require.Error(t, err)
		assert.EqualError(t, err, "first")
	})
	t.Run("With all errors", func(t *testing.T) {
		err := New(AllErrors()).
			AddAssertion(false, "first").
			AddValidator(NewEmptyStringValidator("name", "  ")).
			Validate()
		require.Error(t, err)
		assert.Len(t, multierr.Errors(err), 2)
	})
}

func TestRules(t *testing.T) {
	pattern := regexp.MustCompile(`^[a-z]+$`)
	custom := errors.New("custom")

	assert.NoError(t, NewPatternValidator(pattern, "abc", custom).Validate())
	assert.ErrorIs(t, NewPatternValidator(pattern, "ABC", custom).Validate(), custom)
	assert.Error(t, NewPatternValidator(pattern, "ABC", nil).Validate())

	assert.Error(t, NewTCPAddressValidator("127.0.0.1").Validate())
	assert.Error(t, NewTCPAddressValidator(":9000").Validate())
	assert.Error(t, NewTCPAddressValidator("127.0.0.1:port").Validate())
	assert.Error(t, NewTCPAddressValidator("127.0.0.1:70000").Validate())
	assert.NoError(t, NewTCPAddressValidator("localhost:0").Validate())

	assert.EqualError(t, NewEmptyStringValidator("host", "").Validate(), "the [host] is required")
}
