package main

import (
	"context"
	"sync"
)

// stage is a group of background loops that are stopped together.
type stage struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func newStage() *stage {
	ctx, cancel := context.WithCancel(context.Background())
	return &stage{ctx: ctx, cancel: cancel}
}

// Go runs fn in a goroutine with the stage context.
func (s *stage) Go(fn func(context.Context)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn(s.ctx)
	}()
}

// Stop cancels the stage and waits for every loop to return.
func (s *stage) Stop() {
	s.cancel()
	s.wg.Wait()
}
