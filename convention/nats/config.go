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

package nats

import (
	"time"

	"github.com/neuroph12/CompAktor/internal/validation"
)

// Config represents the nats provider configuration
type Config struct {
	// NatsServer defines the nats server in the format nats://host:port
	NatsServer string
	// NatsSubject defines the subject actor systems announce themselves on
	NatsSubject string
	// Timeout defines the connection timeout
	Timeout time.Duration
	// MaxConnectAttempts defines the number of connection attempts
	MaxConnectAttempts int
}

// Validate checks whether the given configuration is valid
func (x Config) Validate() error {
	return validation.New(validation.FailFast()).
		AddValidator(validation.NewEmptyStringValidator("NatsServer", x.NatsServer)).
		AddValidator(validation.NewEmptyStringValidator("NatsSubject", x.NatsSubject)).
		AddAssertion(x.Timeout >= 0, "Timeout is invalid").
		AddAssertion(x.MaxConnectAttempts >= 0, "MaxConnectAttempts is invalid").
		Validate()
}

func (x Config) withDefaults() Config {
	if x.Timeout <= 0 {
		x.Timeout = 2 * time.Second
	}
	if x.MaxConnectAttempts <= 0 {
		x.MaxConnectAttempts = 5
	}
	return x
}
