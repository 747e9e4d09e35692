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

// Package wire encodes messages into the binary form exchanged between actor systems.
//
// The encoding follows the protobuf wire format so that every frame can be
// inspected with standard protobuf tooling. Application payloads travel as
// google.protobuf.Any.
package wire

import (
	"errors"
	"fmt"
	"time"

	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/anypb"

	"github.com/neuroph12/CompAktor/address"
	cerrors "github.com/neuroph12/CompAktor/errors"
	"github.com/neuroph12/CompAktor/message"
)

// message fields
const (
	fieldVariant protowire.Number = iota + 1
	fieldTarget
	fieldSender
	fieldActorAddress
	fieldStatus
	fieldParentAddress
	fieldChildAddress
	fieldKind
	fieldConfig
	fieldHost
	fieldPort
	fieldSystemAddress
	fieldPayload
)

// address fields
const (
	addressHost protowire.Number = iota + 1
	addressPort
	addressPath
)

// actor config fields
const (
	configName protowire.Number = iota + 1
	configMailboxCapacity
	configInitMaxRetries
	configInitTimeout
	configAttribute
)

// ErrUnsupportedPayload is returned when an application payload is not a proto.Message
var ErrUnsupportedPayload = errors.New("application payload must be a proto.Message")

// Marshal encodes a message
func Marshal(msg message.Message) ([]byte, error) {
	if msg == nil {
		return nil, cerrors.NewErrInvalidMessage(errors.New("nil message"))
	}

	b := appendString(nil, fieldVariant, msg.Variant())
	b = appendAddress(b, fieldTarget, msg.Target())
	b = appendAddress(b, fieldSender, msg.Sender())

	switch m := msg.(type) {
	case *message.CreateActor:
		b = appendString(b, fieldKind, m.Kind)
		b = protowire.AppendTag(b, fieldConfig, protowire.BytesType)
		b = protowire.AppendBytes(b, marshalConfig(m.Config))
		b = appendAddress(b, fieldParentAddress, m.ParentAddress)
	case *message.RegisterActor:
		b = appendAddress(b, fieldActorAddress, m.ActorAddress)
		b = appendVarint(b, fieldStatus, uint64(m.ActorStatus))
	case *message.RemoveActor:
		b = appendAddress(b, fieldActorAddress, m.ActorAddress)
	case *message.ActorCleanup:
		b = appendAddress(b, fieldActorAddress, m.ActorAddress)
	case *message.AddChild:
		b = appendAddress(b, fieldParentAddress, m.ParentAddress)
		b = appendAddress(b, fieldChildAddress, m.ChildAddress)
	case *message.RemoveChild:
		b = appendAddress(b, fieldParentAddress, m.ParentAddress)
		b = appendAddress(b, fieldChildAddress, m.ChildAddress)
	case *message.SetActorStatus:
		b = appendAddress(b, fieldActorAddress, m.ActorAddress)
		b = appendVarint(b, fieldStatus, uint64(m.Status))
	case *message.StopActor:
	case *message.SetConventionLeader:
		b = appendAddress(b, fieldActorAddress, m.ActorAddress)
		b = appendString(b, fieldHost, m.Host)
		b = appendVarint(b, fieldPort, uint64(m.Port))
	case *message.RegisterRemoteSystem:
		b = appendAddress(b, fieldSystemAddress, m.SystemAddress)
	case *message.UnRegisterRemoteSystem:
		b = appendAddress(b, fieldSystemAddress, m.SystemAddress)
	case *message.Application:
		payload, ok := m.Payload.(proto.Message)
		if !ok {
			return nil, fmt.Errorf("%w: got %s", ErrUnsupportedPayload, m.PayloadType())
		}
		packed, err := anypb.New(payload)
		if err != nil {
			return nil, err
		}
		bytea, err := proto.Marshal(packed)
		if err != nil {
			return nil, err
		}
		b = protowire.AppendTag(b, fieldPayload, protowire.BytesType)
		b = protowire.AppendBytes(b, bytea)
	default:
		return nil, cerrors.NewErrInvalidMessage(fmt.Errorf("unknown variant %s", msg.Variant()))
	}
	return b, nil
}

// decoded collects the fields of a frame before the variant is built
type decoded struct {
	variant  string
	target   address.Address
	sender   address.Address
	actor    address.Address
	status   message.Status
	parent   address.Address
	child    address.Address
	kind     string
	config   message.ActorConfig
	host     string
	port     int
	system   address.Address
	payload  []byte
	hasValue bool
}

// Unmarshal decodes a message
func Unmarshal(b []byte) (message.Message, error) {
	var d decoded
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, value []byte, varint uint64) error {
		var err error
		switch num {
		case fieldVariant:
			d.variant = string(value)
		case fieldTarget:
			d.target, err = unmarshalAddress(value)
		case fieldSender:
			d.sender, err = unmarshalAddress(value)
		case fieldActorAddress:
			d.actor, err = unmarshalAddress(value)
		case fieldStatus:
			d.status = message.Status(varint)
		case fieldParentAddress:
			d.parent, err = unmarshalAddress(value)
		case fieldChildAddress:
			d.child, err = unmarshalAddress(value)
		case fieldKind:
			d.kind = string(value)
		case fieldConfig:
			d.config, err = unmarshalConfig(value)
		case fieldHost:
			d.host = string(value)
		case fieldPort:
			d.port = int(varint)
		case fieldSystemAddress:
			d.system, err = unmarshalAddress(value)
		case fieldPayload:
			d.payload = value
			d.hasValue = true
		}
		return err
	})
	if err != nil {
		return nil, cerrors.NewErrInvalidMessage(err)
	}
	return d.build()
}

func (d decoded) build() (message.Message, error) {
	switch d.variant {
	case "CreateActor":
		return message.NewCreateActor(d.kind, d.config, d.parent, d.target, d.sender)
	case "RegisterActor":
		return message.NewRegisterActor(d.actor, d.status, d.target, d.sender)
	case "RemoveActor":
		return message.NewRemoveActor(d.actor, d.target, d.sender)
	case "ActorCleanup":
		return message.NewActorCleanup(d.actor, d.target, d.sender)
	case "AddChild":
		return message.NewAddChild(d.parent, d.child, d.target, d.sender)
	case "RemoveChild":
		return message.NewRemoveChild(d.parent, d.child, d.target, d.sender)
	case "SetActorStatus":
		return message.NewSetActorStatus(d.actor, d.status, d.target, d.sender)
	case "StopActor":
		return message.NewStopActor(d.target, d.sender)
	case "SetConventionLeader":
		return message.NewSetConventionLeader(d.actor, d.host, d.port, d.target, d.sender)
	case "RegisterRemoteSystem":
		return message.NewRegisterRemoteSystem(d.system, d.target, d.sender)
	case "UnRegisterRemoteSystem":
		return message.NewUnRegisterRemoteSystem(d.system, d.target, d.sender)
	case "Application":
		if !d.hasValue {
			return nil, cerrors.NewErrInvalidMessage(errors.New("missing application payload"))
		}
		packed := new(anypb.Any)
		if err := proto.Unmarshal(d.payload, packed); err != nil {
			return nil, cerrors.NewErrInvalidMessage(err)
		}
		payload, err := packed.UnmarshalNew()
		if err != nil {
			return nil, cerrors.NewErrInvalidMessage(err)
		}
		return message.NewApplication(payload, d.target, d.sender)
	default:
		return nil, cerrors.NewErrInvalidMessage(fmt.Errorf("unknown variant %q", d.variant))
	}
}

// MarshalAddress encodes an Address on its own
func MarshalAddress(addr address.Address) []byte {
	return marshalAddress(addr)
}

// UnmarshalAddress decodes an Address encoded with MarshalAddress
func UnmarshalAddress(b []byte) (address.Address, error) {
	return unmarshalAddress(b)
}

func marshalAddress(addr address.Address) []byte {
	b := appendString(nil, addressHost, addr.Host())
	b = appendVarint(b, addressPort, uint64(addr.Port()))
	return appendString(b, addressPath, addr.Path())
}

func unmarshalAddress(b []byte) (address.Address, error) {
	var (
		host, path string
		port       int
	)
	err := consumeFields(b, func(num protowire.Number, _ protowire.Type, value []byte, varint uint64) error {
		switch num {
		case addressHost:
			host = string(value)
		case addressPort:
			port = int(varint)
		case addressPath:
			path = string(value)
		}
		return nil
	})
	if err != nil {
		return address.Address{}, err
	}
	return address.New(host, port, path), nil
}

func marshalConfig(config message.ActorConfig) []byte {
	b := appendString(nil, configName, config.Name)
	b = appendVarint(b, configMailboxCapacity, uint64(config.MailboxCapacity))
	b = appendVarint(b, configInitMaxRetries, uint64(config.InitMaxRetries))
	b = appendVarint(b, configInitTimeout, uint64(config.InitTimeout))
	for key, value := range config.Attributes {
		entry := appendString(nil, 1, key)
		entry = appendString(entry, 2, value)
		b = protowire.AppendTag(b, configAttribute, protowire.BytesType)
		b = protowire.AppendBytes(b, entry)
	}
	return b
}

func unmarshalConfig(b []byte) (message.ActorConfig, error) {
	var config message.ActorConfig
	err := consumeFields(b, func(num protowire.Number, _ protowire.Type, value []byte, varint uint64) error {
		switch num {
		case configName:
			config.Name = string(value)
		case configMailboxCapacity:
			config.MailboxCapacity = int(varint)
		case configInitMaxRetries:
			config.InitMaxRetries = int(varint)
		case configInitTimeout:
			config.InitTimeout = time.Duration(varint)
		case configAttribute:
			var key, val string
			if err := consumeFields(value, func(n protowire.Number, _ protowire.Type, v []byte, _ uint64) error {
				switch n {
				case 1:
					key = string(v)
				case 2:
					val = string(v)
				}
				return nil
			}); err != nil {
				return err
			}
			if config.Attributes == nil {
				config.Attributes = make(map[string]string)
			}
			config.Attributes[key] = val
		}
		return nil
	})
	return config, err
}

func appendString(b []byte, num protowire.Number, value string) []byte {
	if value == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, value)
}

func appendVarint(b []byte, num protowire.Number, value uint64) []byte {
	if value == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, value)
}

func appendAddress(b []byte, num protowire.Number, addr address.Address) []byte {
	if addr.IsNoSender() {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, marshalAddress(addr))
}

// consumeFields walks a protobuf encoded buffer. Bytes fields are passed as value,
// varint fields as varint; unknown wire types are skipped.
func consumeFields(b []byte, fn func(num protowire.Number, typ protowire.Type, value []byte, varint uint64) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		var (
			value  []byte
			varint uint64
		)
		switch typ {
		case protowire.BytesType:
			value, n = protowire.ConsumeBytes(b)
		case protowire.VarintType:
			varint, n = protowire.ConsumeVarint(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		if err := fn(num, typ, value, varint); err != nil {
			return err
		}
	}
	return nil
}
