package main

import (
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// shutdown lets a signal handler running on another goroutine stop the frame
// loop. GL and glfw teardown stays on the main thread: the handler only
// raises the flag and then waits for main to report that it has finished.
type shutdown struct {
	requested atomic.Bool
	done      chan struct{}
	once      sync.Once
}

func newShutdown() *shutdown {
	return &shutdown{done: make(chan struct{})}
}

// Request asks the frame loop to stop
func (s *shutdown) Request() {
	s.requested.Store(true)
}

// Requested reports whether Request has been called
func (s *shutdown) Requested() bool {
	return s.requested.Load()
}

// Finish marks teardown as complete. Safe to call more than once.
func (s *shutdown) Finish() {
	s.once.Do(func() { close(s.done) })
}

// Wait blocks until Finish is called or timeout elapses, and reports whether
// teardown completed
func (s *shutdown) Wait(timeout time.Duration) bool {
	select {
	case <-s.done:
		return true
	case <-time.After(timeout):
		return false
	}
}

// interrupt is bound to closer: request the stop, then hold the process open
// until main has released the scene and terminated glfw
func (s *shutdown) interrupt(timeout time.Duration) func() {
	return func() {
		s.Request()
		if !s.Wait(timeout) {
			log.Printf("Shutdown: teardown did not finish within %v", timeout)
		}
	}
}
