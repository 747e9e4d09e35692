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

package bench

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/travisjeffery/go-dynaport"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/neuroph12/CompAktor/actor"
	"github.com/neuroph12/CompAktor/address"
	"github.com/neuroph12/CompAktor/log"
	"github.com/neuroph12/CompAktor/message"
	"github.com/neuroph12/CompAktor/remote"
)

// Benchmarker is an actor that helps run benchmark tests
type Benchmarker struct {
	Wg sync.WaitGroup
}

func (p *Benchmarker) PreStart(context.Context) error {
	return nil
}

func (p *Benchmarker) Receive(*actor.ReceiveContext) {
	p.Wg.Done()
}

func (p *Benchmarker) PostStop(context.Context) error {
	return nil
}

func newSystem(b *testing.B, opts ...actor.Option) *actor.ActorSystem {
	b.Helper()
	opts = append([]actor.Option{actor.WithLogger(log.DiscardLogger)}, opts...)
	system, err := actor.NewActorSystem("benchSys", opts...)
	if err != nil {
		b.Fatal(err)
	}
	if err := system.Start(context.Background()); err != nil {
		b.Fatal(err)
	}
	return system
}

func newRemoteSystem(b *testing.B) *actor.ActorSystem {
	b.Helper()
	port := dynaport.Get(1)[0]
	transport, err := remote.NewTransport(remote.NewConfig("127.0.0.1", port, remote.WithLogger(log.DiscardLogger)))
	if err != nil {
		b.Fatal(err)
	}
	return newSystem(b, actor.WithHost("127.0.0.1"), actor.WithPort(port), actor.WithTransport(transport))
}

func spawn(b *testing.B, system *actor.ActorSystem, benchmarker *Benchmarker) address.Address {
	b.Helper()
	ctx := context.Background()
	addr, err := system.Spawn(ctx, benchmarker, address.NoSender())
	if err != nil {
		b.Fatal(err)
	}

	pid, _ := system.Lookup(addr)
	for !pid.IsRunning() {
		time.Sleep(time.Millisecond)
	}
	return addr
}

func BenchmarkActor(b *testing.B) {
	b.Run("tell:single sender", func(b *testing.B) {
		ctx := context.Background()
		system := newSystem(b)
		benchmarker := new(Benchmarker)
		addr := spawn(b, system, benchmarker)

		b.ResetTimer()
		benchmarker.Wg.Add(b.N)
		go func() {
			for range b.N {
				msg, _ := message.NewApplication(struct{}{}, addr, address.NoSender())
				_ = system.Tell(ctx, msg)
			}
		}()
		benchmarker.Wg.Wait()
		b.StopTimer()
		_ = system.Stop(ctx)
	})
	b.Run("tell:parallel senders", func(b *testing.B) {
		ctx := context.Background()
		system := newSystem(b)
		benchmarker := new(Benchmarker)
		addr := spawn(b, system, benchmarker)

		b.ResetTimer()
		benchmarker.Wg.Add(b.N)
		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				msg, _ := message.NewApplication(struct{}{}, addr, address.NoSender())
				_ = system.Tell(ctx, msg)
			}
		})
		benchmarker.Wg.Wait()
		b.StopTimer()
		_ = system.Stop(ctx)
	})
	b.Run("tell:remote", func(b *testing.B) {
		ctx := context.Background()
		sender := newRemoteSystem(b)
		receiver := newRemoteSystem(b)
		benchmarker := new(Benchmarker)
		addr := spawn(b, receiver, benchmarker)

		b.ResetTimer()
		benchmarker.Wg.Add(b.N)
		go func() {
			for range b.N {
				msg, _ := message.NewApplication(wrapperspb.String("ping"), addr, sender.Address())
				_ = sender.Tell(ctx, msg)
			}
		}()
		benchmarker.Wg.Wait()
		b.StopTimer()
		_ = sender.Stop(ctx)
		_ = receiver.Stop(ctx)
	})
}
