// Copyright 2012-2016 The GoSNMP Authors. All rights reserved.  Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

package gosnmp

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDesCBCRoundTrip(t *testing.T) {
	key := []byte("01234567")
	iv := []byte("abcdefgh")
	plaintext := []byte("a message that is longer than one DES block")

	ct, err := desCBCEncrypt(key, iv, plaintext)
	require.NoError(t, err)
	assert.Equal(t, 0, len(ct)%8)

	pt, err := desCBCDecrypt(key, iv, ct)
	require.NoError(t, err)
	assert.Equal(t, plaintext, pt[:len(plaintext)])
}

func TestAesCFB128RoundTrip(t *testing.T) {
	key := make([]byte, 16)
	iv := make([]byte, 16)
	for i := range key {
		key[i] = byte(i)
		iv[i] = byte(i * 3)
	}
	plaintext := []byte("scoped pdu bytes, arbitrary length, no padding needed")

	ct, err := aesCFB128(key, iv, plaintext, true)
	require.NoError(t, err)
	assert.Equal(t, len(plaintext), len(ct))

	pt, err := aesCFB128(key, iv, ct, false)
	require.NoError(t, err)
	assert.Equal(t, plaintext, pt)
}

func TestConstantTimeEqual(t *testing.T) {
	assert.True(t, constantTimeEqual([]byte{1, 2, 3}, []byte{1, 2, 3}))
	assert.False(t, constantTimeEqual([]byte{1, 2, 3}, []byte{1, 2, 4}))
	assert.False(t, constantTimeEqual([]byte{1, 2}, []byte{1, 2, 3}))
}

func TestHmacTruncated12Length(t *testing.T) {
	tag, err := hmacTruncated12(AuthMD5, make([]byte, 16), []byte("whole message bytes"))
	require.NoError(t, err)
	assert.Len(t, tag, 12)

	tag, err = hmacTruncated12(AuthSHA, make([]byte, 20), []byte("whole message bytes"))
	require.NoError(t, err)
	assert.Len(t, tag, 12)
}

func TestHmacFullIsDeterministic(t *testing.T) {
	key := []byte("a 20-byte-ish key!!")
	msg := []byte("same message twice")
	a, err := hmacFull(AuthSHA, key, msg)
	require.NoError(t, err)
	b, err := hmacFull(AuthSHA, key, msg)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := hmacFull(AuthSHA, key, []byte("different message"))
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

// TestHmacKAT transcribes the RFC 2202 HMAC-MD5/HMAC-SHA1 known-answer
// vectors: ground truth for hmacFull, which TestHmacFullIsDeterministic
// alone can't catch a wrong-but-self-consistent implementation of.
func TestHmacKAT(t *testing.T) {
	cases := []struct {
		name   string
		proto  AuthProtocol
		key    []byte
		data   []byte
		digest string
	}{
		{
			name:   "md5-case1",
			proto:  AuthMD5,
			key:    bytes.Repeat([]byte{0x0b}, 16),
			data:   []byte("Hi There"),
			digest: "9294727a3638bb1c13f48ef8158bfc9d",
		},
		{
			name:   "md5-case2",
			proto:  AuthMD5,
			key:    []byte("Jefe"),
			data:   []byte("what do ya want for nothing?"),
			digest: "750c783e6ab0b503eaa86e310a5db738",
		},
		{
			name:   "md5-case3",
			proto:  AuthMD5,
			key:    bytes.Repeat([]byte{0xaa}, 16),
			data:   bytes.Repeat([]byte{0xdd}, 50),
			digest: "56be34521d144c88dbb8c733f0e8b3f6",
		},
		{
			name:   "sha1-case1",
			proto:  AuthSHA,
			key:    bytes.Repeat([]byte{0x0b}, 20),
			data:   []byte("Hi There"),
			digest: "b617318655057264e28bc0b6fb378c8ef146be00",
		},
		{
			name:   "sha1-case2",
			proto:  AuthSHA,
			key:    []byte("Jefe"),
			data:   []byte("what do ya want for nothing?"),
			digest: "effcdf6ae5eb2fa2d27416d5f184df9c259a7c79",
		},
		{
			name:   "sha1-case3",
			proto:  AuthSHA,
			key:    bytes.Repeat([]byte{0xaa}, 20),
			data:   bytes.Repeat([]byte{0xdd}, 50),
			digest: "125d7342b9ac11cd91a39af48aa17b4f63f175d3",
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			want, err := hex.DecodeString(c.digest)
			require.NoError(t, err)
			got, err := hmacFull(c.proto, c.key, c.data)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestCryptoRandBytesLength(t *testing.T) {
	b, err := cryptoRandBytes(16)
	require.NoError(t, err)
	assert.Len(t, b, 16)
}
