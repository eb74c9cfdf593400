// Copyright 2012-2016 The GoSNMP Authors. All rights reserved.  Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package gosnmp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsmUserTableTemplateClonedPerEngine(t *testing.T) {
	tbl := NewUsmUserTable()
	tbl.AddUser(&UsmUser{
		Name:           "alice",
		AuthProtocol:   AuthSHA,
		AuthPassphrase: "authpassphrase",
	})

	u1, ok := tbl.Find([]byte("engine-one"), "alice")
	require.True(t, ok)
	u2, ok := tbl.Find([]byte("engine-two"), "alice")
	require.True(t, ok)

	assert.NotEqual(t, u1.AuthKey, u2.AuthKey, "localized keys must differ per engine")
	assert.Equal(t, "engine-one", string(u1.EngineID))
}

func TestUsmUserTableFindUnknownUser(t *testing.T) {
	tbl := NewUsmUserTable()
	_, ok := tbl.Find([]byte("engine-one"), "nobody")
	assert.False(t, ok)
}

func TestBuildAndParseUsmSecurityParamsRoundTrip(t *testing.T) {
	engineID := []byte{0x80, 0x00, 0x1f, 0x88, 0x01}
	authParams := make([]byte, 12)
	privParams := make([]byte, 8)
	body, authStart := buildUsmSecurityParamsBody(engineID, 3, 1000, "alice", authParams, privParams)
	assert.Greater(t, authStart, 0)

	gotEngine, boots, engTime, name, gotAuth, gotPriv, err := parseUsmSecurityParams(buildTLV(BERSequence, body))
	require.NoError(t, err)
	assert.Equal(t, engineID, gotEngine)
	assert.Equal(t, uint32(3), boots)
	assert.Equal(t, uint32(1000), engTime)
	assert.Equal(t, "alice", name)
	assert.Equal(t, authParams, gotAuth)
	assert.Equal(t, privParams, gotPriv)
}

func TestFindAuthParamOffsetLocatesValue(t *testing.T) {
	whole := []byte("prefix-XXXXXXXXXXXX-suffix")
	needle := []byte("XXXXXXXXXXXX")
	off := findAuthParamOffset(whole, needle)
	assert.Equal(t, 7, off)
}

func TestFindAuthParamOffsetNotFound(t *testing.T) {
	off := findAuthParamOffset([]byte("abc"), []byte("zzzzzzzzzzzz"))
	assert.Equal(t, -1, off)
}

func TestXorSaltIVWidthAndDependency(t *testing.T) {
	tail := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	iv1 := xorSaltIV(tail, 1)
	iv2 := xorSaltIV(tail, 2)
	assert.Len(t, iv1, 8)
	assert.NotEqual(t, iv1, iv2)
}

func TestAesIVWidthAndDependency(t *testing.T) {
	iv1 := aesIV(1, 100, 1)
	iv2 := aesIV(1, 100, 2)
	assert.Len(t, iv1, 16)
	assert.NotEqual(t, iv1, iv2)
}

func TestHandleReportRetriesOnEngineIDAndTimeWindow(t *testing.T) {
	e := NewEngine()
	model := NewUSM(e)
	s := &Session{}

	report := NewPDU(Report)
	report.SecurityEngineID = []byte("real-engine")
	assert.True(t, model.HandleReport(s, UnknownEngId, report))
	assert.Equal(t, "real-engine", string(s.SecurityEngineID))

	assert.True(t, model.HandleReport(s, NotInTimeWindow, NewPDU(Report)))
	assert.False(t, model.HandleReport(s, UnknownUserName, NewPDU(Report)))
}

func TestUsmEndToEndAuthPrivRoundTrip(t *testing.T) {
	e := NewEngine()
	e.LocalEngineID = []byte{0x80, 0x00, 0x1f, 0x88, 0x99}
	e.LocalBoots = 1

	model, ok := e.SecurityModels.Lookup(UserSecurityModelID)
	require.True(t, ok)
	usm := model.(*usmSecurityModel)

	authKey, err := DeriveLocalizedKey(AuthSHA, "authpassphrase", e.LocalEngineID)
	require.NoError(t, err)
	privKey, err := DeriveLocalizedKey(AuthSHA, "privpassphrase", e.LocalEngineID)
	require.NoError(t, err)
	usm.users.AddUser(&UsmUser{
		EngineID:     e.LocalEngineID,
		Name:         "alice",
		AuthProtocol: AuthSHA,
		AuthKey:      authKey,
		PrivProtocol: PrivAES,
		PrivKey:      privKey,
	})

	p := NewPDU(GetRequest)
	p.RequestID = 1
	p.MsgID = 1
	p.SecurityEngineID = e.LocalEngineID
	p.SecurityName = "alice"
	p.SecurityModel = UserSecurityModelID
	p.SecurityLevel = LevelAuthPriv
	p.Flags = PDUFlagReportable
	require.NoError(t, p.Append(MustParseOID("1.3.6.1.2.1.1.1.0"), TypeNull, nil))

	wire, err := BuildMessage(e.SecurityModels, p, 1, 65507)
	require.NoError(t, err)

	incoming, err := ParseMessage(wire, e)
	require.NoError(t, err)
	assert.Equal(t, int32(1), incoming.MsgID)

	decoded, err := usm.Decode(incoming)
	require.NoError(t, err)
	require.Nil(t, decoded.Report)
	assert.Equal(t, "alice", decoded.SecurityName)

	scoped, err := parseScopedPDU(decoded.ScopedPDUPlaintext)
	require.NoError(t, err)
	assert.Equal(t, p.RequestID, scoped.RequestID)
	require.Len(t, scoped.VarBinds, 1)
	assert.True(t, p.VarBinds[0].Name.Equal(scoped.VarBinds[0].Name))
}

func TestUsmDecodeRejectsTamperedAuth(t *testing.T) {
	e := NewEngine()
	e.LocalEngineID = []byte{0x80, 0x00, 0x1f, 0x88, 0x99}
	e.LocalBoots = 1

	model, _ := e.SecurityModels.Lookup(UserSecurityModelID)
	usm := model.(*usmSecurityModel)

	authKey, err := DeriveLocalizedKey(AuthMD5, "authpassphrase", e.LocalEngineID)
	require.NoError(t, err)
	usm.users.AddUser(&UsmUser{
		EngineID:     e.LocalEngineID,
		Name:         "bob",
		AuthProtocol: AuthMD5,
		AuthKey:      authKey,
	})

	p := NewPDU(GetRequest)
	p.RequestID = 2
	p.SecurityEngineID = e.LocalEngineID
	p.SecurityName = "bob"
	p.SecurityModel = UserSecurityModelID
	p.SecurityLevel = LevelAuthNoPriv
	p.Flags = PDUFlagReportable
	require.NoError(t, p.Append(MustParseOID("1.3.6.1.2.1.1.1.0"), TypeNull, nil))

	wire, err := BuildMessage(e.SecurityModels, p, 2, 65507)
	require.NoError(t, err)
	wire[len(wire)-1] ^= 0xff // tamper with the tail of the scopedPDU

	incoming, err := ParseMessage(wire, e)
	require.NoError(t, err)
	decoded, err := usm.Decode(incoming)
	require.NoError(t, err)
	require.NotNil(t, decoded.Report)
	assert.Equal(t, AuthenticationFailure, decoded.ReportKind)
}
