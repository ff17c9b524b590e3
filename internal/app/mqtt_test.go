// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueuedPublisherFull(t *testing.T) {
	q := newQueuedPublisher(&fakePublisher{}, 1)

	require.NoError(t, q.Publish("a", []byte("1")))
	assert.ErrorIs(t, q.Publish("a", []byte("2")), errQueueFull)
}

func TestQueuedPublisherRun(t *testing.T) {
	next := &fakePublisher{}
	q := newQueuedPublisher(next, 4)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- q.run(ctx) }()

	require.NoError(t, q.Publish("a", []byte("1")))
	require.NoError(t, q.Publish("b", []byte("2")))

	require.Eventually(t, func() bool { return len(next.all()) == 2 }, time.Second, 5*time.Millisecond)
	msgs := next.all()
	assert.Equal(t, "a", msgs[0].topic)
	assert.Equal(t, []byte("2"), msgs[1].payload)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("run did not stop")
	}
}

func TestQueuedPublisherKeepsRunningOnError(t *testing.T) {
	next := &fakePublisher{err: errors.New("offline")}
	q := newQueuedPublisher(next, 4)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go q.run(ctx)

	require.NoError(t, q.Publish("a", nil))
	require.Eventually(t, func() bool { return len(q.queue) == 0 }, time.Second, 5*time.Millisecond)

	next.mu.Lock()
	next.err = nil
	next.mu.Unlock()

	require.NoError(t, q.Publish("b", nil))
	require.Eventually(t, func() bool { return len(next.all()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "b", next.all()[0].topic)
}
