// Copyright 2012-2016 The GoSNMP Authors. All rights reserved.  Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package gosnmp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildAndParsePDUBodyRoundTrip(t *testing.T) {
	p := NewPDU(GetRequest)
	p.RequestID = 12345
	require.NoError(t, p.Append(MustParseOID("1.3.6.1.2.1.1.1.0"), TypeNull, nil))
	require.NoError(t, p.Append(MustParseOID("1.3.6.1.2.1.1.3.0"), TypeNull, nil))

	encoded, err := buildPDUBody(p)
	require.NoError(t, err)

	decoded, consumed, err := parsePDUBody(encoded)
	require.NoError(t, err)
	assert.Equal(t, len(encoded), consumed)
	assert.Equal(t, GetRequest, decoded.Command)
	assert.Equal(t, p.RequestID, decoded.RequestID)
	require.Len(t, decoded.VarBinds, 2)
	assert.True(t, p.VarBinds[0].Name.Equal(decoded.VarBinds[0].Name))
}

func TestBuildAndParsePDUBodyGetBulk(t *testing.T) {
	p := NewPDU(GetBulkRequest)
	p.RequestID = 7
	p.NonRepeaters = 1
	p.MaxRepetitions = 10
	require.NoError(t, p.Append(MustParseOID("1.3.6.1.2.1.2.2.1"), TypeNull, nil))

	encoded, err := buildPDUBody(p)
	require.NoError(t, err)

	decoded, _, err := parsePDUBody(encoded)
	require.NoError(t, err)
	assert.Equal(t, 1, decoded.NonRepeaters)
	assert.Equal(t, 10, decoded.MaxRepetitions)
}

func TestBuildAndParsePDUBodyErrorStatus(t *testing.T) {
	p := NewPDU(GetResponse)
	p.RequestID = 99
	p.ErrorStatus = 2
	p.ErrorIndex = 1
	require.NoError(t, p.Append(MustParseOID("1.3.6.1.2.1.1.1.0"), TypeNull, nil))

	encoded, err := buildPDUBody(p)
	require.NoError(t, err)

	decoded, _, err := parsePDUBody(encoded)
	require.NoError(t, err)
	assert.Equal(t, 2, decoded.ErrorStatus)
	assert.Equal(t, 1, decoded.ErrorIndex)
}

func TestParsePDUBodyRejectsUnknownTag(t *testing.T) {
	_, _, err := parsePDUBody(buildTLV(Asn1BER(0x99), []byte{0x02, 0x01, 0x00}))
	require.Error(t, err)
}
