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

package wire

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/neuroph12/CompAktor/address"
	cerrors "github.com/neuroph12/CompAktor/errors"
	"github.com/neuroph12/CompAktor/message"
)

func TestWire(t *testing.T) {
	system := address.New("10.0.0.1", 9000, address.SystemPath)
	registry := address.New("10.0.0.1", 9000, address.RegistryPath)
	actor := address.New("10.0.0.1", 9000, "worker")

	t.Run("With CreateActor", func(t *testing.T) {
		config := message.ActorConfig{
			Name:            "worker",
			MailboxCapacity: 10,
			InitMaxRetries:  3,
			InitTimeout:     2 * time.Second,
			Attributes:      map[string]string{"zone": "a"},
		}
		msg, err := message.NewCreateActor("*actor.worker", config, actor, registry, system)
		require.NoError(t, err)

		bytea, err := Marshal(msg)
		require.NoError(t, err)

		decoded, err := Unmarshal(bytea)
		require.NoError(t, err)
		actual, ok := decoded.(*message.CreateActor)
		require.True(t, ok)
		assert.Equal(t, "*actor.worker", actual.Kind)
		assert.Equal(t, config, actual.Config)
		assert.Equal(t, actor, actual.ParentAddress)
		assert.Equal(t, registry, actual.Target())
		assert.Equal(t, system, actual.Sender())
	})
	t.Run("With SetConventionLeader", func(t *testing.T) {
		msg, err := message.NewSetConventionLeader(system, "10.0.0.1", 9000, system, address.NoSender())
		require.NoError(t, err)

		bytea, err := Marshal(msg)
		require.NoError(t, err)

		decoded, err := Unmarshal(bytea)
		require.NoError(t, err)
		actual, ok := decoded.(*message.SetConventionLeader)
		require.True(t, ok)
		assert.Equal(t, system, actual.ActorAddress)
		assert.Equal(t, "10.0.0.1", actual.Host)
		assert.Equal(t, 9000, actual.Port)
		assert.True(t, actual.Sender().IsNoSender())
	})
	t.Run("With registry variants", func(t *testing.T) {
		register, _ := message.NewRegisterActor(actor, message.StatusRunning, registry, system)
		status, _ := message.NewSetActorStatus(actor, message.StatusStopping, registry, system)
		add, _ := message.NewAddChild(system, actor, registry, system)
		remove, _ := message.NewRemoveChild(system, actor, registry, system)
		cleanup, _ := message.NewActorCleanup(actor, registry, system)
		removeActor, _ := message.NewRemoveActor(actor, registry, system)
		stop, _ := message.NewStopActor(actor, system)
		join, _ := message.NewRegisterRemoteSystem(system, system, system)
		leave, _ := message.NewUnRegisterRemoteSystem(system, system, system)

		for _, msg := range []message.Message{register, status, add, remove, cleanup, removeActor, stop, join, leave} {
			bytea, err := Marshal(msg)
			require.NoError(t, err, msg.Variant())
			decoded, err := Unmarshal(bytea)
			require.NoError(t, err, msg.Variant())
			assert.Equal(t, msg, decoded, msg.Variant())
		}
	})
	t.Run("With Application payload", func(t *testing.T) {
		msg, err := message.NewApplication(wrapperspb.String("hello"), actor, system)
		require.NoError(t, err)

		bytea, err := Marshal(msg)
		require.NoError(t, err)

		decoded, err := Unmarshal(bytea)
		require.NoError(t, err)
		actual, ok := decoded.(*message.Application)
		require.True(t, ok)
		payload, ok := actual.Payload.(proto.Message)
		require.True(t, ok)
		assert.True(t, proto.Equal(wrapperspb.String("hello"), payload))
	})
	t.Run("With non proto payload", func(t *testing.T) {
		msg, err := message.NewApplication("hello", actor, system)
		require.NoError(t, err)
		_, err = Marshal(msg)
		assert.ErrorIs(t, err, ErrUnsupportedPayload)
	})
	t.Run("With invalid frames", func(t *testing.T) {
		_, err := Unmarshal([]byte{0xff})
		assert.ErrorIs(t, err, cerrors.ErrInvalidMessage)

		bytea := appendString(nil, fieldVariant, "Nope")
		bytea = appendAddress(bytea, fieldTarget, actor)
		_, err = Unmarshal(bytea)
		assert.ErrorIs(t, err, cerrors.ErrInvalidMessage)

		bytea = appendString(nil, fieldVariant, "StopActor")
		_, err = Unmarshal(bytea)
		assert.ErrorIs(t, err, cerrors.ErrInvalidMessage)
	})
	t.Run("With address", func(t *testing.T) {
		decoded, err := UnmarshalAddress(MarshalAddress(actor))
		require.NoError(t, err)
		assert.Equal(t, actor, decoded)
	})
}
