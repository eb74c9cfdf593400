package gosnmp

// Copyright 2012-2016 The GoSNMP Authors. All rights reserved.  Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

// Reactor integration: the engine never runs its own select/poll
// loop; instead it contributes read fds and the earliest timeout to an
// externally-driven FdReactor, then is pumped via Poll once that
// reactor reports readiness or the deadline elapses. This fits the
// engine into a single-threaded, callback-driven event loop owned by
// the caller.

import "time"

// RegisterWithReactor adds every open session's transport fd to r and
// arms the nearest timeout across all sessions: the caller's
// select/poll/epoll loop owns actually waiting; this only describes
// what to wait for.
func (e *Engine) RegisterWithReactor(r FdReactor) {
	if r == nil {
		return
	}
	var nearest time.Time
	haveDeadline := false
	for _, s := range e.Sessions() {
		if s.Transport != nil {
			if fd := s.Transport.Fd(); fd >= 0 {
				r.AddReadFd(fd)
			}
		}
		if d, ok := s.NextDeadline(); ok {
			if !haveDeadline || d.Before(nearest) {
				nearest, haveDeadline = d, true
			}
		}
	}
	if d, ok := e.Alarms.Nearest(); ok {
		if !haveDeadline || d.Before(nearest) {
			nearest, haveDeadline = d, true
		}
	}
	if haveDeadline {
		d := time.Until(nearest)
		if d < 0 {
			d = 0
		}
		r.SetTimeout(d)
	}
}

// Poll drains all ready sessions' transports and fires any expired
// retries/timeouts. Call this once per reactor wakeup, regardless of
// whether the wakeup was fd-readiness or a timeout, since CheckTimeouts
// must run on both.
func (e *Engine) Poll(now time.Time) []error {
	var errs []error
	for _, s := range e.Sessions() {
		for {
			got, err := s.Receive()
			if err != nil {
				errs = append(errs, err)
			}
			if !got {
				break
			}
		}
		s.CheckTimeouts(now)
	}
	e.Alarms.FireDue(now)
	return errs
}
