/*
Copyright 2024 Alexandre Mahdhaoui

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package gracefulshutdown ties the lifetime of long-running goroutines to process signals.
package gracefulshutdown

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// GracefulShutdown holds the process context and the goroutines that must drain before the process exits.
type GracefulShutdown struct {
	ctx    context.Context
	cancel context.CancelFunc
	name   string

	once      sync.Once
	readyOnce sync.Once
	wg        *sync.WaitGroup

	// ready is closed by Ready(), once every Go() or WaitGroup().Add() call has been made.
	ready chan struct{}

	exitFunc func(int)
}

type Option func(*options)

type options struct {
	exitFunc func(int)
	signals  []os.Signal
}

// WithExitFunc replaces os.Exit. Tests use it to observe the exit code.
func WithExitFunc(f func(int)) Option {
	return func(o *options) { o.exitFunc = f }
}

// WithSignals replaces the signals cancelling the context. Defaults to SIGTERM and SIGINT.
func WithSignals(signals ...os.Signal) Option {
	return func(o *options) { o.signals = signals }
}

// New returns a GracefulShutdown whose context is cancelled by a signal, by CancelFunc or by Shutdown.
func New(name string, opts ...Option) *GracefulShutdown {
	o := options{
		exitFunc: os.Exit,
		signals:  []os.Signal{syscall.SIGTERM, os.Interrupt},
	}

	for _, opt := range opts {
		opt(&o)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), o.signals...)

	gs := &GracefulShutdown{
		ctx:      ctx,
		cancel:   cancel,
		name:     name,
		wg:       &sync.WaitGroup{},
		ready:    make(chan struct{}),
		exitFunc: o.exitFunc,
	}

	go func() {
		select {
		case <-gs.ready:
			<-ctx.Done()
		case <-ctx.Done():
			slog.Warn("context cancelled before Ready() was called", "name", name)
		}

		gs.Shutdown(0)
	}()

	return gs
}

// Go runs f in a goroutine tracked by the wait group. A non-nil error triggers Shutdown(1).
// It must be called before Ready().
func (s *GracefulShutdown) Go(f func(ctx context.Context) error) {
	s.wg.Add(1)

	go func() {
		err := f(s.ctx)

		// Done must happen before Shutdown, which waits on the group.
		s.wg.Done()

		if err != nil {
			slog.ErrorContext(s.ctx, "❌ received error", "name", s.name, "error", err)
			s.Shutdown(1)
		}
	}()
}

// Shutdown cancels the context, waits for tracked goroutines and exits with exitCode.
// Only the first call has any effect.
func (s *GracefulShutdown) Shutdown(exitCode int) {
	s.once.Do(func() {
		slog.Info("⌛ gracefully shutting down", "name", s.name)

		s.cancel()
		s.wg.Wait()
		s.exitFunc(exitCode)
	})
}

func (s *GracefulShutdown) Context() context.Context {
	return s.ctx
}

func (s *GracefulShutdown) CancelFunc() context.CancelFunc {
	return s.cancel
}

func (s *GracefulShutdown) WaitGroup() *sync.WaitGroup {
	return s.wg
}

// Ready signals that all WaitGroup.Add() calls have been made. It is safe to call multiple times.
func (s *GracefulShutdown) Ready() {
	s.readyOnce.Do(func() {
		close(s.ready)
	})
}
