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

package tcp

import (
	"io"
	"net"
	"sync"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
)

// ConnWrapper transforms a net.Conn, typically by adding a compression layer
type ConnWrapper interface {
	Wrap(conn net.Conn) (net.Conn, error)
}

type flushWriter interface {
	io.Writer
	Flush() error
}

// compressedConn compresses writes and decompresses reads.
// Every Write is flushed so that the peer can decode it immediately,
// hence Close only needs to close the raw connection.
type compressedConn struct {
	raw    net.Conn
	reader io.Reader
	writer flushWriter
	once   sync.Once
	err    error
}

func (c *compressedConn) Read(p []byte) (int, error) {
	return c.reader.Read(p)
}

func (c *compressedConn) Write(p []byte) (int, error) {
	n, err := c.writer.Write(p)
	if err != nil {
		return n, err
	}
	return n, c.writer.Flush()
}

func (c *compressedConn) Close() error {
	c.once.Do(func() {
		c.err = c.raw.Close()
	})
	return c.err
}

func (c *compressedConn) LocalAddr() net.Addr                { return c.raw.LocalAddr() }
func (c *compressedConn) RemoteAddr() net.Addr               { return c.raw.RemoteAddr() }
func (c *compressedConn) SetDeadline(t time.Time) error      { return c.raw.SetDeadline(t) }
func (c *compressedConn) SetReadDeadline(t time.Time) error  { return c.raw.SetReadDeadline(t) }
func (c *compressedConn) SetWriteDeadline(t time.Time) error { return c.raw.SetWriteDeadline(t) }

// ZstdConnWrapper wraps connections with Zstandard compression
type ZstdConnWrapper struct {
	encoderOpts []zstd.EOption
	decoderOpts []zstd.DOption
}

var _ ConnWrapper = (*ZstdConnWrapper)(nil)

// NewZstdConnWrapper creates a ZstdConnWrapper. It validates the encoder and
// decoder settings eagerly.
func NewZstdConnWrapper(level zstd.EncoderLevel) (*ZstdConnWrapper, error) {
	w := &ZstdConnWrapper{
		encoderOpts: []zstd.EOption{
			zstd.WithEncoderLevel(level),
			zstd.WithWindowSize(512 << 10),
			zstd.WithEncoderConcurrency(1),
			zstd.WithLowerEncoderMem(true),
		},
		decoderOpts: []zstd.DOption{
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderLowmem(true),
			zstd.WithDecoderMaxMemory(64 << 20),
		},
	}

	enc, err := zstd.NewWriter(nil, w.encoderOpts...)
	if err != nil {
		return nil, err
	}
	_ = enc.Close()

	dec, err := zstd.NewReader(nil, w.decoderOpts...)
	if err != nil {
		return nil, err
	}
	dec.Close()
	return w, nil
}

// Wrap applies Zstandard compression to conn
func (z *ZstdConnWrapper) Wrap(conn net.Conn) (net.Conn, error) {
	enc, err := zstd.NewWriter(conn, z.encoderOpts...)
	if err != nil {
		return nil, err
	}

	dec, err := zstd.NewReader(conn, z.decoderOpts...)
	if err != nil {
		_ = enc.Close()
		return nil, err
	}
	return &compressedConn{raw: conn, reader: dec, writer: enc}, nil
}

// BrotliConnWrapper wraps connections with Brotli compression
type BrotliConnWrapper struct {
	level int
}

var _ ConnWrapper = (*BrotliConnWrapper)(nil)

// NewBrotliConnWrapper creates a BrotliConnWrapper
func NewBrotliConnWrapper(level int) *BrotliConnWrapper {
	return &BrotliConnWrapper{level: level}
}

// Wrap applies Brotli compression to conn
func (b *BrotliConnWrapper) Wrap(conn net.Conn) (net.Conn, error) {
	writer := brotli.NewWriterLevel(conn, b.level)
	reader := brotli.NewReader(conn)
	return &compressedConn{raw: conn, reader: reader, writer: writer}, nil
}
