// Copyright 2012-2016 The GoSNMP Authors. All rights reserved.  Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package gosnmp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAlarmSetNearestTracksEarliest(t *testing.T) {
	a := NewAlarmSet()
	_, ok := a.Nearest()
	assert.False(t, ok)

	now := time.Now()
	a.Add("late", now.Add(time.Hour), func() {})
	a.Add("early", now.Add(time.Minute), func() {})

	d, ok := a.Nearest()
	assert.True(t, ok)
	assert.True(t, d.Equal(now.Add(time.Minute)) || d.Before(now.Add(time.Minute).Add(time.Millisecond)))
}

func TestAlarmSetCancelRemovesAlarm(t *testing.T) {
	a := NewAlarmSet()
	now := time.Now()
	a.Add("only", now.Add(time.Minute), func() {})
	a.Cancel("only")
	_, ok := a.Nearest()
	assert.False(t, ok)
}

func TestAlarmSetFireDueRunsAndRemovesExpired(t *testing.T) {
	a := NewAlarmSet()
	now := time.Now()
	fired := make([]string, 0, 2)
	a.Add("past", now.Add(-time.Second), func() { fired = append(fired, "past") })
	a.Add("future", now.Add(time.Hour), func() { fired = append(fired, "future") })

	a.FireDue(now)
	assert.Equal(t, []string{"past"}, fired)

	_, ok := a.Nearest()
	assert.True(t, ok, "the future alarm must still be pending")
}
