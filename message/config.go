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

package message

import (
	"maps"
	"time"
)

const (
	// DefaultInitMaxRetries is the number of PreStart attempts
	DefaultInitMaxRetries = 5
	// DefaultInitTimeout bounds the whole PreStart phase
	DefaultInitTimeout = time.Second
)

// ActorConfig carries the creation settings of an actor.
// A zero MailboxCapacity means an unbounded application mailbox.
type ActorConfig struct {
	Name            string
	MailboxCapacity int
	InitMaxRetries  int
	InitTimeout     time.Duration
	Attributes      map[string]string
}

// DefaultActorConfig returns an ActorConfig with the default settings
func DefaultActorConfig() ActorConfig {
	return ActorConfig{
		InitMaxRetries: DefaultInitMaxRetries,
		InitTimeout:    DefaultInitTimeout,
	}
}

// WithDefaults fills the zero settings with the defaults
func (c ActorConfig) WithDefaults() ActorConfig {
	if c.InitMaxRetries <= 0 {
		c.InitMaxRetries = DefaultInitMaxRetries
	}
	if c.InitTimeout <= 0 {
		c.InitTimeout = DefaultInitTimeout
	}
	if c.MailboxCapacity < 0 {
		c.MailboxCapacity = 0
	}
	c.Attributes = maps.Clone(c.Attributes)
	return c
}
