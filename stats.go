package gosnmp

// Copyright 2012-2016 The GoSNMP Authors. All rights reserved.  Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

import "sync/atomic"

// StatCounter enumerates the fixed, read-only protocol counters: 3 for
// MPD, 6 for USM, ~30 for protocol I/O, 2 for the target MIB. The
// numeric value is stable API, matching the way SNMP itself exposes
// these as a MIB table indexed by a fixed enum.
type StatCounter int

const (
	// MPD (message processing) counters.
	StatSnmpUnknownSecurityModels StatCounter = iota
	StatSnmpInvalidMsgs
	StatSnmpUnknownPDUHandlers

	// USM counters.
	StatUsmStatsUnsupportedSecLevels
	StatUsmStatsNotInTimeWindows
	StatUsmStatsUnknownUserNames
	StatUsmStatsUnknownEngineIDs
	StatUsmStatsWrongDigests
	StatUsmStatsDecryptionErrors

	// Protocol I/O counters.
	StatSnmpInPkts
	StatSnmpOutPkts
	StatSnmpInBadVersions
	StatSnmpInBadCommunityNames
	StatSnmpInBadCommunityUses
	StatSnmpInASNParseErrs
	StatSnmpInTooBigs
	StatSnmpInNoSuchNames
	StatSnmpInBadValues
	StatSnmpInReadOnlys
	StatSnmpInGenErrs
	StatSnmpInTotalReqVars
	StatSnmpInTotalSetVars
	StatSnmpInGetRequests
	StatSnmpInGetNexts
	StatSnmpInSetRequests
	StatSnmpInGetResponses
	StatSnmpInTraps
	StatSnmpOutTooBigs
	StatSnmpOutNoSuchNames
	StatSnmpOutBadValues
	StatSnmpOutGenErrs
	StatSnmpOutGetRequests
	StatSnmpOutGetNexts
	StatSnmpOutSetRequests
	StatSnmpOutGetResponses
	StatSnmpOutTraps
	StatSnmpSilentDrops
	StatSnmpProxyDrops

	// Target-MIB counters.
	StatSnmpUnavailableContexts
	StatSnmpUnknownContexts

	statCounterCount
)

// Stats holds the fixed enum-indexed counters. Increment is safe for
// concurrent use from multiple sessions sharing one Engine.
type Stats struct {
	counters [statCounterCount]int64
}

// NewStats returns a zeroed counter block.
func NewStats() *Stats { return &Stats{} }

// Incr bumps counter by one.
func (s *Stats) Incr(counter StatCounter) {
	if s == nil || counter < 0 || counter >= statCounterCount {
		return
	}
	atomic.AddInt64(&s.counters[counter], 1)
}

// Get reads the current value of counter.
func (s *Stats) Get(counter StatCounter) int64 {
	if s == nil || counter < 0 || counter >= statCounterCount {
		return 0
	}
	return atomic.LoadInt64(&s.counters[counter])
}
