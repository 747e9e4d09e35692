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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neuroph12/CompAktor/errors"
)

func TestConfig(t *testing.T) {
	t.Run("With defaults", func(t *testing.T) {
		config := NewConfig("127.0.0.1", 9000)
		require.NoError(t, config.Validate())
		assert.Equal(t, "127.0.0.1", config.BindAddr())
		assert.Equal(t, 9000, config.BindPort())
		assert.Equal(t, "127.0.0.1:9000", config.HostPort())
		assert.Equal(t, ZstdCompression, config.Compression())
		assert.Equal(t, 16<<20, config.MaxFrameSize())
		assert.Equal(t, 5*time.Second, config.DialTimeout())
		assert.Equal(t, 10*time.Second, config.WriteTimeout())
		assert.NotNil(t, config.Security())
	})
	t.Run("With options", func(t *testing.T) {
		config := NewConfig("127.0.0.1", 9000,
			WithCompression(BrotliCompression),
			WithMaxFrameSize(1<<20),
			WithDialTimeout(time.Second),
			WithWriteTimeout(0),
			WithTLS(&tls.Config{}, &tls.Config{}))
		require.NoError(t, config.Validate())
		assert.Equal(t, BrotliCompression, config.Compression())
		assert.Equal(t, 1<<20, config.MaxFrameSize())
	})
	t.Run("With invalid settings", func(t *testing.T) {
		assert.Error(t, NewConfig("", 9000).Validate())
		assert.Error(t, NewConfig("127.0.0.1", 70000).Validate())
		assert.Error(t, NewConfig("127.0.0.1", 9000, WithMaxFrameSize(10)).Validate())
		assert.Error(t, NewConfig("127.0.0.1", 9000, WithDialTimeout(0)).Validate())
		assert.Error(t, NewConfig("127.0.0.1", 9000, WithCompression(Compression(42))).Validate())
		assert.Error(t, NewConfig("127.0.0.1", 9000, WithTLS(&tls.Config{}, nil)).Validate())
		assert.Error(t, NewConfig("127.0.0.1", 9000, WithSecurity(nil)).Validate())
	})
	t.Run("With sanitize", func(t *testing.T) {
		config := NewConfig("127.0.0.1", 9000)
		require.NoError(t, config.Sanitize())
		assert.Equal(t, "127.0.0.1", config.BindAddr())
	})
}

type fakeConn struct {
	net.Conn
	remote net.Addr
}

func (c fakeConn) RemoteAddr() net.Addr { return c.remote }

func TestSecurity(t *testing.T) {
	conn := fakeConn{remote: &net.TCPAddr{IP: net.ParseIP("10.0.0.7"), Port: 4000}}

	require.NoError(t, AllowAll().Admit(conn))

	security, err := NewAllowList("10.0.0.0/24")
	require.NoError(t, err)
	require.NoError(t, security.Admit(conn))

	security, err = NewAllowList("192.168.0.0/16")
	require.NoError(t, err)
	assert.ErrorIs(t, security.Admit(conn), errors.ErrAccessDenied)

	_, err = NewAllowList("not-a-cidr")
	assert.Error(t, err)

	assert.Equal(t, "none", NoCompression.String())
	assert.Equal(t, "unknown", Compression(42).String())
}
