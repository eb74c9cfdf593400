package gosnmp

// Copyright 2012-2016 The GoSNMP Authors. All rights reserved.  Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

// Report-PDU OID table (RFC 3414 §5, USM-MIB usmStats* scalars), used by
// usmSecurityModel.buildReport to pick the single varbind a discovery or
// validation failure reports back to the sender.

var usmReportOIDs = map[ErrorKind]OID{
	UnsupportedSecLevel:   MustParseOID("1.3.6.1.6.3.15.1.1.1.0"),
	UsmUnsupportedLevel:   MustParseOID("1.3.6.1.6.3.15.1.1.1.0"),
	NotInTimeWindow:       MustParseOID("1.3.6.1.6.3.15.1.1.2.0"),
	UsmNotInTimeWindow:    MustParseOID("1.3.6.1.6.3.15.1.1.2.0"),
	UnknownUserName:       MustParseOID("1.3.6.1.6.3.15.1.1.3.0"),
	UsmUnknownUser:        MustParseOID("1.3.6.1.6.3.15.1.1.3.0"),
	UnknownEngId:          MustParseOID("1.3.6.1.6.3.15.1.1.4.0"),
	UsmUnknownEngineId:    MustParseOID("1.3.6.1.6.3.15.1.1.4.0"),
	AuthenticationFailure: MustParseOID("1.3.6.1.6.3.15.1.1.5.0"),
	DecryptionError:       MustParseOID("1.3.6.1.6.3.15.1.1.6.0"),
}

func reportOIDForKind(kind ErrorKind) OID {
	if oid, ok := usmReportOIDs[kind]; ok {
		return oid.Clone()
	}
	return MustParseOID("1.3.6.1.6.3.15.1.1.1.0")
}

// usmReportCounters maps each report-worthy ErrorKind to the StatCounter
// whose current value is the report varbind's payload: the peer uses
// that counter to tell a fresh failure from a replayed or racing one.
var usmReportCounters = map[ErrorKind]StatCounter{
	UnsupportedSecLevel:   StatUsmStatsUnsupportedSecLevels,
	UsmUnsupportedLevel:   StatUsmStatsUnsupportedSecLevels,
	NotInTimeWindow:       StatUsmStatsNotInTimeWindows,
	UsmNotInTimeWindow:    StatUsmStatsNotInTimeWindows,
	UnknownUserName:       StatUsmStatsUnknownUserNames,
	UsmUnknownUser:        StatUsmStatsUnknownUserNames,
	UnknownEngId:          StatUsmStatsUnknownEngineIDs,
	UsmUnknownEngineId:    StatUsmStatsUnknownEngineIDs,
	AuthenticationFailure: StatUsmStatsWrongDigests,
	DecryptionError:       StatUsmStatsDecryptionErrors,
}

func reportStatCounterForKind(kind ErrorKind) StatCounter {
	if c, ok := usmReportCounters[kind]; ok {
		return c
	}
	return StatUsmStatsUnsupportedSecLevels
}
