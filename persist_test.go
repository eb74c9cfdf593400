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

func TestSaveAndLoadBootsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "boots")
	require.NoError(t, SaveBoots(path, 42))
	got, err := LoadBoots(path)
	require.NoError(t, err)
	assert.Equal(t, uint32(42), got)
}

func TestLoadBootsMissingFileIsZero(t *testing.T) {
	got, err := LoadBoots(filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, err)
	assert.Equal(t, uint32(0), got)
}

func TestInitLocalBootsIncrementsAcrossRestarts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "boots")
	first, err := InitLocalBoots(path)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), first)

	second, err := InitLocalBoots(path)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), second)
}

func TestInitLocalBootsFreezesAtMax(t *testing.T) {
	path := filepath.Join(t.TempDir(), "boots")
	require.NoError(t, SaveBoots(path, 1<<31-1))
	got, err := InitLocalBoots(path)
	require.NoError(t, err)
	assert.Equal(t, uint32(1<<31-1), got)
}

func TestSaveAndLoadUsmUsersRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users")
	users := []*UsmUser{
		{
			EngineID:     []byte{0x80, 0x00, 0x1f, 0x88},
			Name:         "alice",
			AuthProtocol: AuthSHA,
			AuthKey:      []byte{1, 2, 3, 4},
			PrivProtocol: PrivAES,
			PrivKey:      []byte{5, 6, 7, 8},
		},
	}
	require.NoError(t, SaveUsmUsers(path, users))

	loaded, err := LoadUsmUsers(path)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, users[0].Name, loaded[0].Name)
	assert.Equal(t, users[0].EngineID, loaded[0].EngineID)
	assert.Equal(t, users[0].AuthKey, loaded[0].AuthKey)
	assert.Equal(t, users[0].PrivProtocol, loaded[0].PrivProtocol)
}

func TestLoadUsmUsersMissingFile(t *testing.T) {
	users, err := LoadUsmUsers(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Nil(t, users)
}

func TestLoadUsmUsersRejectsMalformedLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users")
	require.NoError(t, atomicWriteFile(path, []byte("only\tthree\tfields\n")))
	_, err := LoadUsmUsers(path)
	require.Error(t, err)
}
