// Copyright 2012-2016 The GoSNMP Authors. All rights reserved.  Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package gosnmp

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEngineHasUSMPreregistered(t *testing.T) {
	e := NewEngine()
	m, ok := e.SecurityModels.Lookup(UserSecurityModelID)
	require.True(t, ok)
	assert.Equal(t, "usm", m.Name())
}

func TestNewEngineAssignsUniqueInstanceID(t *testing.T) {
	a := NewEngine()
	b := NewEngine()
	assert.NotEqual(t, a.InstanceID, b.InstanceID)
}

func TestMintIDNeverReturnsZero(t *testing.T) {
	e := NewEngine()
	e.nextID = 0xfffffffe
	for i := 0; i < 8; i++ {
		id := e.mintID()
		assert.NotZero(t, id)
	}
}

func TestMintIDMasksTo16BitsWhenConfigured(t *testing.T) {
	e := NewEngine()
	e.Use16BitIDs = true
	for i := 0; i < 32; i++ {
		id := e.mintID()
		assert.LessOrEqual(t, id, int32(0x7fff))
	}
}

func TestAddAndRemoveSession(t *testing.T) {
	e := NewEngine()
	s := &Session{Engine: e}
	e.addSession(s)
	assert.Len(t, e.Sessions(), 1)
	e.removeSession(s)
	assert.Len(t, e.Sessions(), 0)
}

func TestSessionsReturnsIndependentSnapshot(t *testing.T) {
	e := NewEngine()
	e.addSession(&Session{Engine: e})
	snap := e.Sessions()
	e.addSession(&Session{Engine: e})
	assert.Len(t, snap, 1)
	assert.Len(t, e.Sessions(), 2)
}

func TestLoadBootsFileNoopWhenUnset(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.LoadBootsFile())
	assert.Equal(t, uint32(0), e.LocalBoots)
}

func TestLoadBootsFileInitializesFromDisk(t *testing.T) {
	e := NewEngine()
	e.BootsFile = filepath.Join(t.TempDir(), "boots")
	require.NoError(t, e.LoadBootsFile())
	assert.Equal(t, uint32(1), e.LocalBoots)
}

func TestLogReturnsNopSinkWhenLoggerNil(t *testing.T) {
	e := NewEngine()
	e.Logger = nil
	assert.NotPanics(t, func() { e.log().Infof("hi") })
}
