package main

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStage_StopWaitsForLoops(t *testing.T) {
	s := newStage()
	var finished bool
	s.Go(func(ctx context.Context) {
		<-ctx.Done()
		time.Sleep(20 * time.Millisecond)
		finished = true
	})

	s.Stop()
	assert.True(t, finished)
}

func TestStage_SinksFlushBeforeWorkerDrains(t *testing.T) {
	sinks, workers := newStage(), newStage()

	var mu sync.Mutex
	var order []string
	record := func(step string) {
		mu.Lock()
		defer mu.Unlock()
		order = append(order, step)
	}

	sinks.Go(func(ctx context.Context) {
		<-ctx.Done()
		time.Sleep(20 * time.Millisecond) // slow flush
		record("sink flushed")
	})
	workers.Go(func(ctx context.Context) {
		<-ctx.Done()
		record("worker drained")
	})

	sinks.Stop()
	workers.Stop()

	assert.Equal(t, []string{"sink flushed", "worker drained"}, order)
}
