// Copyright 2012-2016 The GoSNMP Authors. All rights reserved.  Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package gosnmp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPDUCloneDeepCopiesVarBinds(t *testing.T) {
	p := NewPDU(GetRequest)
	require.NoError(t, p.Append(MustParseOID("1.3.6.1.2.1.1.1.0"), TypeOctetString, []byte("x")))

	clone, err := p.Clone(nil)
	require.NoError(t, err)

	clone.VarBinds[0].Value.([]byte)[0] = 'y'
	assert.Equal(t, byte('x'), p.VarBinds[0].Value.([]byte)[0], "clone must not share backing arrays")
}

func TestPDUSplit(t *testing.T) {
	p := NewPDU(GetResponse)
	for i := 0; i < 5; i++ {
		require.NoError(t, p.Append(MustParseOID("1.3.6.1.2.1.1.1.0"), TypeInteger32, int64(i)))
	}
	part := p.Split(2, 2)
	require.Len(t, part.VarBinds, 2)
	assert.Equal(t, int64(2), part.VarBinds[0].Value)
	assert.Equal(t, int64(3), part.VarBinds[1].Value)
}

func TestPDUSplitPastEnd(t *testing.T) {
	p := NewPDU(GetResponse)
	require.NoError(t, p.Append(MustParseOID("1.3.6.1.2.1.1.1.0"), TypeInteger32, int64(1)))
	part := p.Split(5, 2)
	assert.Empty(t, part.VarBinds)
}

func TestPDUFixDropsErrorIndexVarBind(t *testing.T) {
	p := NewPDU(GetResponse)
	require.NoError(t, p.Append(MustParseOID("1.3.6.1.2.1.1.1.0"), TypeInteger32, int64(1)))
	require.NoError(t, p.Append(MustParseOID("1.3.6.1.2.1.1.2.0"), TypeInteger32, int64(2)))
	p.ErrorStatus = 5
	p.ErrorIndex = 2

	fixed, err := p.Fix(nil)
	require.NoError(t, err)
	require.Len(t, fixed.VarBinds, 1)
	assert.Equal(t, int64(1), fixed.VarBinds[0].Value)
	assert.Equal(t, 0, fixed.ErrorStatus)
}

func TestPDUFindByPrefix(t *testing.T) {
	p := NewPDU(GetResponse)
	require.NoError(t, p.Append(MustParseOID("1.3.6.1.2.1.1.1.0"), TypeInteger32, int64(1)))
	vb := p.FindByPrefix(MustParseOID("1.3.6.1.2.1.1"))
	require.NotNil(t, vb)
	assert.Nil(t, p.FindByPrefix(MustParseOID("1.3.6.1.2.1.99")))
}

func TestPDUTypeExpectsResponse(t *testing.T) {
	assert.True(t, GetRequest.expectsResponse())
	assert.True(t, InformRequest.expectsResponse())
	assert.False(t, GetResponse.expectsResponse())
	assert.False(t, Trap2.expectsResponse())
	assert.False(t, Report.expectsResponse())
}
