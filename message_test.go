// Copyright 2012-2016 The GoSNMP Authors. All rights reserved.  Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package gosnmp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlagsForLevelRoundTrip(t *testing.T) {
	for _, level := range []SecurityLevel{LevelNoAuthNoPriv, LevelAuthNoPriv, LevelAuthPriv} {
		assert.Equal(t, level, levelForFlags(flagsForLevel(level)))
	}
}

func TestBuildAndParseGlobalDataRoundTrip(t *testing.T) {
	tlv := buildGlobalData(42, 65507, MsgFlagAuth|MsgFlagReportable, UserSecurityModelID)
	msgID, maxSize, flags, secModel, err := parseGlobalData(tlv)
	require.NoError(t, err)
	assert.Equal(t, int32(42), msgID)
	assert.Equal(t, 65507, maxSize)
	assert.Equal(t, MsgFlagAuth|MsgFlagReportable, flags)
	assert.Equal(t, UserSecurityModelID, secModel)
}

func TestBuildAndParseScopedPDURoundTrip(t *testing.T) {
	p := NewPDU(GetRequest)
	p.RequestID = 5
	p.ContextEngineID = []byte{0x01, 0x02}
	p.ContextName = "myContext"
	require.NoError(t, p.Append(MustParseOID("1.3.6.1.2.1.1.1.0"), TypeNull, nil))

	encoded, err := buildScopedPDU(p)
	require.NoError(t, err)

	body, _, err := expectTLV(encoded, BERSequence)
	require.NoError(t, err)
	decoded, err := parseScopedPDU(body)
	require.NoError(t, err)
	assert.Equal(t, p.ContextName, decoded.ContextName)
	assert.Equal(t, p.ContextEngineID, decoded.ContextEngineID)
	assert.Equal(t, p.RequestID, decoded.RequestID)
}

func TestParseMessageRejectsWrongVersion(t *testing.T) {
	versionTLV := buildTLV(BERInteger, marshalInt64(1))
	globalTLV := buildGlobalData(1, 65507, 0, UserSecurityModelID)
	secParams := buildTLV(BEROctetString, nil)
	data := buildTLV(BERSequence, nil)
	body := append(append(append(append([]byte{}, versionTLV...), globalTLV...), secParams...), data...)
	msg := buildTLV(BERSequence, body)

	_, err := ParseMessage(msg, NewEngine())
	require.Error(t, err)
}

func TestBuildMessageUnknownSecurityModel(t *testing.T) {
	p := NewPDU(GetRequest)
	p.SecurityModel = 99
	_, err := BuildMessage(NewSecurityModelRegistry(), p, 1, 65507)
	require.Error(t, err)
}

func TestParseGlobalDataRejectsOutOfRangeMaxSize(t *testing.T) {
	tlv := buildGlobalData(1, 100, 0, UserSecurityModelID)
	_, _, _, _, err := parseGlobalData(tlv)
	require.Error(t, err)
	se, ok := err.(*SnmpError)
	require.True(t, ok)
	assert.Equal(t, Asn1ParseErr, se.Kind)
}

func TestParseMessageRejectsOutOfRangeMaxSize(t *testing.T) {
	e := NewEngine()
	e.LocalEngineID = []byte{0x80, 0x00, 0x1f, 0x88, 0x99}

	versionTLV := buildTLV(BERInteger, marshalInt64(v3MsgVersion))
	globalTLV := buildGlobalData(1, 100, 0, UserSecurityModelID)
	secParams := buildTLV(BEROctetString, nil)
	data := buildTLV(BERSequence, nil)
	body := append(append(append(append([]byte{}, versionTLV...), globalTLV...), secParams...), data...)
	msg := buildTLV(BERSequence, body)

	_, err := ParseMessage(msg, e)
	require.Error(t, err)
	se, ok := err.(*SnmpError)
	require.True(t, ok)
	assert.Equal(t, Asn1ParseErr, se.Kind)
}

func TestParseGlobalDataRejectsPrivWithoutAuth(t *testing.T) {
	tlv := buildGlobalData(1, 65507, MsgFlagPriv, UserSecurityModelID)
	_, _, _, _, err := parseGlobalData(tlv)
	require.Error(t, err)
	se, ok := err.(*SnmpError)
	require.True(t, ok)
	assert.Equal(t, InvalidMsg, se.Kind)
}

func TestBuildMessageReverseMatchesForwardBuild(t *testing.T) {
	// noAuthNoPriv keeps the build fully deterministic: authPriv would
	// mint a fresh privacy salt per call, so forward/reverse builds of
	// "the same" PDU would legitimately differ in ciphertext even with
	// identical codecs.
	e := NewEngine()
	e.LocalEngineID = []byte{0x80, 0x00, 0x1f, 0x88, 0x99}
	e.LocalBoots = 1

	newPDU := func() *PDU {
		p := NewPDU(GetRequest)
		p.RequestID = 7
		p.MsgID = 7
		p.SecurityEngineID = e.LocalEngineID
		p.SecurityName = "alice"
		p.SecurityModel = UserSecurityModelID
		p.SecurityLevel = LevelNoAuthNoPriv
		p.Flags = PDUFlagReportable
		require.NoError(t, p.Append(MustParseOID("1.3.6.1.2.1.1.1.0"), TypeNull, nil))
		return p
	}

	forward, err := BuildMessage(e.SecurityModels, newPDU(), 7, 65507)
	require.NoError(t, err)
	reverse, err := BuildMessageReverse(e.SecurityModels, newPDU(), 7, 65507)
	require.NoError(t, err)
	assert.Equal(t, forward, reverse)
}
