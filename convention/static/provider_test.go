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

package static

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neuroph12/CompAktor/address"
	"github.com/neuroph12/CompAktor/convention"
	"github.com/neuroph12/CompAktor/log"
)

func TestConfig(t *testing.T) {
	require.NoError(t, Config{Systems: []string{"127.0.0.1:9000"}}.Validate())
	assert.Error(t, Config{}.Validate())
	assert.Error(t, Config{Systems: []string{"127.0.0.1"}}.Validate())
	assert.Error(t, Config{Systems: []string{"127.0.0.1:9000", ":9001"}}.Validate())
}

func TestProvider(t *testing.T) {
	t.Run("With valid config", func(t *testing.T) {
		ctx := context.Background()
		self := address.New("127.0.0.1", 9000, address.SystemPath)
		provider := NewProvider(Config{Systems: []string{"127.0.0.1:9000", "127.0.0.1:9001", "127.0.0.2:9000"}}, log.DiscardLogger)
		assert.Equal(t, "static", provider.ID())

		require.NoError(t, provider.Start(ctx, self))
		require.NoError(t, provider.Start(ctx, self))
		require.NoError(t, provider.Stop(ctx))
		require.NoError(t, provider.Stop(ctx))

		var members []address.Address
		for event := range provider.Watch() {
			assert.Equal(t, convention.MemberJoined, event.Type)
			members = append(members, event.Member)
		}
		assert.Equal(t, []address.Address{
			address.New("127.0.0.1", 9001, address.SystemPath),
			address.New("127.0.0.2", 9000, address.SystemPath),
		}, members)
	})
	t.Run("With invalid config", func(t *testing.T) {
		provider := NewProvider(Config{}, log.DiscardLogger)
		assert.Error(t, provider.Start(context.Background(), address.New("127.0.0.1", 9000, address.SystemPath)))
	})
}
