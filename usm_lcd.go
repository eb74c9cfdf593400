package gosnmp

// Copyright 2012-2016 The GoSNMP Authors. All rights reserved.  Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

// Local Configuration Datastore (part of C7), grounded on
// Firmware/Core/LcdTime.c: one EngineTimeCacheEntry per remote engineID,
// plus the local engine's own (boots, time) pair. LcdTime.c persists
// engineBoots across restarts and increments it once at startup; see
// InitLocalBoots (with SaveBoots/LoadBoots) in persist.go for the Go
// equivalent.

import (
	"sync"
	"time"
)

const timeWindowSeconds = 150

// EngineTimeCacheEntry is the per-remote-engine LCD row.
type EngineTimeCacheEntry struct {
	EngineID              []byte
	EngineBoots           uint32
	EngineTime            uint32
	LastLocalTimeReceived time.Time
	Authenticated         bool
}

// EngineTimeCache hashes entries by engineID; at most one per engineID.
type EngineTimeCache struct {
	mu      sync.Mutex
	entries map[string]*EngineTimeCacheEntry
}

// NewEngineTimeCache returns an empty LCD.
func NewEngineTimeCache() *EngineTimeCache {
	return &EngineTimeCache{entries: make(map[string]*EngineTimeCacheEntry)}
}

// Get returns the cached entry for engineID, if any.
func (c *EngineTimeCache) Get(engineID []byte) (*EngineTimeCacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[string(engineID)]
	return e, ok
}

// EstimatedTime returns entry's engineTime advanced by wall-clock time
// elapsed since it was last refreshed, approximating the remote
// engine's current snmpEngineTime without a fresh round trip.
func (e *EngineTimeCacheEntry) EstimatedTime() uint32 {
	elapsed := time.Since(e.LastLocalTimeReceived).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}
	return e.EngineTime + uint32(elapsed)
}

// ValidateAndUpdate is the time-window check for the non-authoritative
// (manager) side: accept higher boots and update the LCD; reject lower
// boots; reject same-boots-but-earlier-by-more-than-150s. Returns
// whether the message is acceptable and, if not, the ErrorKind to report.
func (c *EngineTimeCache) ValidateAndUpdate(engineID []byte, msgBoots, msgTime uint32) (bool, ErrorKind) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := string(engineID)
	entry, ok := c.entries[key]
	if !ok {
		c.entries[key] = &EngineTimeCacheEntry{
			EngineID:              append([]byte{}, engineID...),
			EngineBoots:           msgBoots,
			EngineTime:            msgTime,
			LastLocalTimeReceived: time.Now(),
			Authenticated:         true,
		}
		return true, Success
	}
	switch {
	case msgBoots > entry.EngineBoots:
		entry.EngineBoots = msgBoots
		entry.EngineTime = msgTime
		entry.LastLocalTimeReceived = time.Now()
		entry.Authenticated = true
		return true, Success
	case msgBoots < entry.EngineBoots:
		return false, NotInTimeWindow
	default:
		estimated := int64(entry.EstimatedTime())
		if int64(msgTime) < estimated-timeWindowSeconds {
			return false, NotInTimeWindow
		}
		if msgTime > entry.EngineTime {
			entry.EngineTime = msgTime
			entry.LastLocalTimeReceived = time.Now()
		}
		return true, Success
	}
}

// ValidateAuthoritative is the time-window check for the
// authoritative (agent) side: reject on boots mismatch or a time delta
// exceeding the 150-second window against our own clock.
func ValidateAuthoritative(localBoots, localTime, msgBoots, msgTime uint32) (bool, ErrorKind) {
	if msgBoots != localBoots {
		return false, NotInTimeWindow
	}
	delta := int64(localTime) - int64(msgTime)
	if delta < 0 {
		delta = -delta
	}
	if delta > timeWindowSeconds {
		return false, NotInTimeWindow
	}
	return true, Success
}

// LocalEngineTime returns the number of seconds since the Engine was
// created, i.e. snmpEngineTime for our own authoritative engineID.
func (e *Engine) LocalEngineTime() uint32 {
	return uint32(time.Since(e.startMono).Seconds())
}
