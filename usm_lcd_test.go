// Copyright 2012-2016 The GoSNMP Authors. All rights reserved.  Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package gosnmp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEngineTimeCacheFirstSightingAccepted(t *testing.T) {
	c := NewEngineTimeCache()
	ok, kind := c.ValidateAndUpdate([]byte("engine-a"), 1, 1000)
	assert.True(t, ok)
	assert.Equal(t, Success, kind)

	entry, found := c.Get([]byte("engine-a"))
	assert.True(t, found)
	assert.Equal(t, uint32(1), entry.EngineBoots)
	assert.Equal(t, uint32(1000), entry.EngineTime)
}

func TestEngineTimeCacheHigherBootsAlwaysAccepted(t *testing.T) {
	c := NewEngineTimeCache()
	c.ValidateAndUpdate([]byte("engine-a"), 1, 1000)

	ok, kind := c.ValidateAndUpdate([]byte("engine-a"), 2, 0)
	assert.True(t, ok)
	assert.Equal(t, Success, kind)
}

func TestEngineTimeCacheLowerBootsRejected(t *testing.T) {
	c := NewEngineTimeCache()
	c.ValidateAndUpdate([]byte("engine-a"), 5, 1000)

	ok, kind := c.ValidateAndUpdate([]byte("engine-a"), 4, 1000)
	assert.False(t, ok)
	assert.Equal(t, NotInTimeWindow, kind)
}

func TestEngineTimeCacheStaleTimeRejected(t *testing.T) {
	c := NewEngineTimeCache()
	c.ValidateAndUpdate([]byte("engine-a"), 1, 10000)

	ok, kind := c.ValidateAndUpdate([]byte("engine-a"), 1, 10000-timeWindowSeconds-1)
	assert.False(t, ok)
	assert.Equal(t, NotInTimeWindow, kind)
}

func TestEngineTimeCacheSameBootsWithinWindowAccepted(t *testing.T) {
	c := NewEngineTimeCache()
	c.ValidateAndUpdate([]byte("engine-a"), 1, 10000)

	ok, kind := c.ValidateAndUpdate([]byte("engine-a"), 1, 10000-timeWindowSeconds+1)
	assert.True(t, ok)
	assert.Equal(t, Success, kind)
}

func TestEngineTimeCacheIndependentPerEngine(t *testing.T) {
	c := NewEngineTimeCache()
	c.ValidateAndUpdate([]byte("engine-a"), 5, 1000)
	ok, kind := c.ValidateAndUpdate([]byte("engine-b"), 1, 0)
	assert.True(t, ok)
	assert.Equal(t, Success, kind)
}

func TestEstimatedTimeAdvancesWithWallClock(t *testing.T) {
	entry := &EngineTimeCacheEntry{
		EngineTime:            1000,
		LastLocalTimeReceived: time.Now().Add(-5 * time.Second),
	}
	est := entry.EstimatedTime()
	assert.GreaterOrEqual(t, est, uint32(1004))
	assert.LessOrEqual(t, est, uint32(1010))
}

func TestValidateAuthoritativeBootsMismatch(t *testing.T) {
	ok, kind := ValidateAuthoritative(5, 1000, 6, 1000)
	assert.False(t, ok)
	assert.Equal(t, NotInTimeWindow, kind)
}

func TestValidateAuthoritativeWithinWindow(t *testing.T) {
	ok, kind := ValidateAuthoritative(5, 1000, 5, 1000+timeWindowSeconds)
	assert.True(t, ok)
	assert.Equal(t, Success, kind)
}

func TestValidateAuthoritativeOutsideWindow(t *testing.T) {
	ok, kind := ValidateAuthoritative(5, 1000, 5, 1000+timeWindowSeconds+1)
	assert.False(t, ok)
	assert.Equal(t, NotInTimeWindow, kind)
}

func TestLocalEngineTimeAdvances(t *testing.T) {
	e := NewEngine()
	first := e.LocalEngineTime()
	time.Sleep(10 * time.Millisecond)
	second := e.LocalEngineTime()
	assert.GreaterOrEqual(t, second, first)
}
