// Package testutil provides shared helpers for testing asynchronous
// handler-based APIs.
package testutil

import (
	"testing"
	"time"
)

// Gather returns a handler that forwards every value it receives to
// the returned channel.
func Gather[T any]() (func(T), <-chan T) {
	ch := make(chan T, 64)
	return func(v T) { ch <- v }, ch
}

// Next receives one value from ch, failing the test if none arrives
// within d.
func Next[T any](t testing.TB, ch <-chan T, d time.Duration) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(d):
		t.Fatal("no value delivered in time")
		panic("unreachable")
	}
}

// None fails the test if a value arrives on ch within d.
func None[T any](t testing.TB, ch <-chan T, d time.Duration) {
	t.Helper()
	select {
	case v := <-ch:
		t.Fatalf("unexpected delivery: %v", v)
	case <-time.After(d):
	}
}

// DrainFor receives from ch until d elapses and returns everything
// that arrived.
func DrainFor[T any](ch <-chan T, d time.Duration) []T {
	var out []T
	deadline := time.After(d)
	for {
		select {
		case v := <-ch:
			out = append(out, v)
		case <-deadline:
			return out
		}
	}
}
