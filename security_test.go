// Copyright 2012-2016 The GoSNMP Authors. All rights reserved.  Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package gosnmp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecurityModelRegistryRegisterAndLookup(t *testing.T) {
	r := NewSecurityModelRegistry()
	e := NewEngine()
	usm := NewUSM(e)

	require.NoError(t, r.Register(usm))

	got, ok := r.Lookup(UserSecurityModelID)
	require.True(t, ok)
	assert.Equal(t, usm, got)

	_, ok = r.Lookup(99)
	assert.False(t, ok)
}

func TestSecurityModelRegistryRejectsDuplicateID(t *testing.T) {
	r := NewSecurityModelRegistry()
	e := NewEngine()
	require.NoError(t, r.Register(NewUSM(e)))
	err := r.Register(NewUSM(e))
	require.Error(t, err)
}

func TestSecurityModelRegistryByName(t *testing.T) {
	r := NewSecurityModelRegistry()
	e := NewEngine()
	usm := NewUSM(e)
	require.NoError(t, r.Register(usm))

	id, ok := r.ByName(usm.Name())
	require.True(t, ok)
	assert.Equal(t, UserSecurityModelID, id)

	m, ok := r.SecurityModelByName(usm.Name())
	require.True(t, ok)
	assert.Equal(t, usm, m)

	_, ok = r.ByName("nonexistent")
	assert.False(t, ok)
}
