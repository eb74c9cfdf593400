package gosnmp

// Copyright 2012-2016 The GoSNMP Authors. All rights reserved.  Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

// AlarmSet is a small sorted one-off alarm list, grounded on
// Firmware/Core/FdEventManager.c folding alarms and session timeouts
// into a single earliest-deadline computation ahead of each select()
// call. The engine's reactor glue (reactor.go) consults it alongside
// each session's outstanding-request deadlines.

import (
	"sort"
	"sync"
	"time"
)

// Alarm is a single scheduled callback.
type Alarm struct {
	ID       string
	Deadline time.Time
	Fire     func()
}

// AlarmSet holds pending alarms ordered by deadline.
type AlarmSet struct {
	mu     sync.Mutex
	alarms []*Alarm
}

// NewAlarmSet returns an empty alarm set.
func NewAlarmSet() *AlarmSet { return &AlarmSet{} }

// Add schedules fire to run at deadline under the caller-chosen id,
// which Cancel can use to remove it before it fires.
func (a *AlarmSet) Add(id string, deadline time.Time, fire func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.alarms = append(a.alarms, &Alarm{ID: id, Deadline: deadline, Fire: fire})
	sort.Slice(a.alarms, func(i, j int) bool { return a.alarms[i].Deadline.Before(a.alarms[j].Deadline) })
}

// Cancel removes a pending alarm by id, if still present.
func (a *AlarmSet) Cancel(id string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i, al := range a.alarms {
		if al.ID == id {
			a.alarms = append(a.alarms[:i], a.alarms[i+1:]...)
			return
		}
	}
}

// Nearest returns the earliest pending deadline, if any.
func (a *AlarmSet) Nearest() (time.Time, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.alarms) == 0 {
		return time.Time{}, false
	}
	return a.alarms[0].Deadline, true
}

// FireDue runs and removes every alarm whose deadline has passed.
func (a *AlarmSet) FireDue(now time.Time) {
	a.mu.Lock()
	var due []*Alarm
	i := 0
	for i < len(a.alarms) && !a.alarms[i].Deadline.After(now) {
		due = append(due, a.alarms[i])
		i++
	}
	a.alarms = a.alarms[i:]
	a.mu.Unlock()

	for _, al := range due {
		al.Fire()
	}
}
