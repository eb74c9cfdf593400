// Copyright 2012-2016 The GoSNMP Authors. All rights reserved.  Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package gosnmp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeConfigStore struct {
	bools   map[string]bool
	ints    map[string]int
	strings map[string]string
}

func (f *fakeConfigStore) Bool(key string) (bool, bool) {
	v, ok := f.bools[key]
	return v, ok
}

func (f *fakeConfigStore) Int(key string) (int, bool) {
	v, ok := f.ints[key]
	return v, ok
}

func (f *fakeConfigStore) String(key string) (string, bool) {
	v, ok := f.strings[key]
	return v, ok
}

func TestApplyConfigNilStoreIsNoop(t *testing.T) {
	s := &Session{Engine: NewEngine(), UserName: "unchanged"}
	ApplyConfig(s, nil)
	assert.Equal(t, "unchanged", s.UserName)
}

func TestApplyConfigSetsSessionDefaults(t *testing.T) {
	cs := &fakeConfigStore{
		strings: map[string]string{
			"defSecurityName":   "alice",
			"defContext":        "myctx",
			"defAuthPassphrase": "authpass123",
			"defPrivPassphrase": "privpass123",
			"defSecurityLevel":  "authPriv",
			"defAuthType":       "SHA",
			"defPrivType":       "AES",
		},
		ints: map[string]int{
			"defRetries": 5,
		},
		bools: map[string]bool{
			"16bitIDs": true,
		},
	}
	s := &Session{Engine: NewEngine()}
	ApplyConfig(s, cs)

	assert.Equal(t, "alice", s.UserName)
	assert.Equal(t, "myctx", s.ContextName)
	assert.Equal(t, "authpass123", s.AuthPassphrase)
	assert.Equal(t, "privpass123", s.PrivPassphrase)
	assert.Equal(t, LevelAuthPriv, s.SecurityLevel)
	assert.Equal(t, AuthSHA, s.AuthProtocol)
	assert.Equal(t, PrivAES, s.PrivProtocol)
	assert.Equal(t, 5, s.DefaultRetries)
	assert.True(t, s.Engine.Use16BitIDs)
}

func TestApplyConfigLeavesUnsetFieldsUntouched(t *testing.T) {
	s := &Session{Engine: NewEngine(), UserName: "preset"}
	ApplyConfig(s, &fakeConfigStore{})
	assert.Equal(t, "preset", s.UserName)
}
