package gosnmp

// Copyright 2012-2016 The GoSNMP Authors. All rights reserved.  Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

// Crypto primitives: a thin, vetted-library-backed contract over
// HMAC-MD5/SHA1, DES-CBC, AES-CFB128 and a CSPRNG, exactly the
// primitives RFC 3414/3826 name, implemented directly against
// crypto/md5, crypto/sha1, crypto/des, crypto/aes and crypto/cipher.
// No third-party crypto library covers this concern, so stdlib is the
// idiomatic choice here (see DESIGN.md).

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/des"
	crand "crypto/rand"
	"crypto/md5"
	"crypto/sha1"
	"hash"
)

// AuthProtocol identifies the HMAC hash used for authentication.
type AuthProtocol uint8

const (
	AuthNone AuthProtocol = iota
	AuthMD5
	AuthSHA
)

// PrivProtocol identifies the cipher used for privacy.
type PrivProtocol uint8

const (
	PrivNone PrivProtocol = iota
	PrivDES
	PrivAES
)

// newHash returns a fresh hash.Hash for the given auth protocol.
func newHash(p AuthProtocol) (hash.Hash, error) {
	switch p {
	case AuthMD5:
		return md5.New(), nil
	case AuthSHA:
		return sha1.New(), nil
	default:
		return nil, errf(UsmUnsupportedLevel, "no hash for auth protocol %d", p)
	}
}

func hashDigestSize(p AuthProtocol) int {
	switch p {
	case AuthMD5:
		return md5.Size
	case AuthSHA:
		return sha1.Size
	default:
		return 0
	}
}

// hmacTruncated12 computes HMAC(key, msg) with the selected hash and
// truncates to the 12-byte wire tag used by usmHMACMD5AuthProtocol /
// usmHMACSHAAuthProtocol (RFC 3414 §6).
func hmacTruncated12(p AuthProtocol, key, msg []byte) ([]byte, error) {
	full, err := hmacFull(p, key, msg)
	if err != nil {
		return nil, err
	}
	return full[:12], nil
}

// hmacFull computes the untruncated HMAC using the two-pass
// inner/outer-pad construction from RFC 2104, matching exactly what the
// RFC 3414's authenticate()/isAuthentic() pseudocode does by hand rather than calling
// crypto/hmac, since USM's key is pre-extended to 64 bytes independent
// of crypto/hmac's own padding logic.
func hmacFull(p AuthProtocol, key, msg []byte) ([]byte, error) {
	var extkey [64]byte
	copy(extkey[:], key)

	var k1, k2 [64]byte
	for i := range extkey {
		k1[i] = extkey[i] ^ 0x36
		k2[i] = extkey[i] ^ 0x5c
	}

	h1, err := newHash(p)
	if err != nil {
		return nil, err
	}
	h1.Write(k1[:])
	h1.Write(msg)
	inner := h1.Sum(nil)

	h2, err := newHash(p)
	if err != nil {
		return nil, err
	}
	h2.Write(k2[:])
	h2.Write(inner)
	return h2.Sum(nil), nil
}

// constantTimeEqual compares two byte slices without early exit on
// mismatch, used for the 12-byte auth tag check.
func constantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	var diff byte
	for i := range a {
		diff |= a[i] ^ b[i]
	}
	return diff == 0
}

// cryptoRandBytes fills n cryptographically-random bytes (CSPRNG).
func cryptoRandBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := crand.Read(b); err != nil {
		return nil, wrapErr(ScGeneralFailure, err, "reading random bytes")
	}
	return b, nil
}

// desCBCEncrypt encrypts plaintext (PKCS-padded to the DES block size)
// under key+iv using CBC mode.
func desCBCEncrypt(key, iv, plaintext []byte) ([]byte, error) {
	block, err := des.NewCipher(key)
	if err != nil {
		return nil, wrapErr(ScGeneralFailure, err, "creating DES cipher")
	}
	padLen := des.BlockSize - len(plaintext)%des.BlockSize
	padded := make([]byte, len(plaintext)+padLen)
	copy(padded, plaintext)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, padded)
	return out, nil
}

// desCBCDecrypt decrypts ciphertext under key+iv using CBC mode; the
// caller is responsible for trimming any PKCS padding based on the
// plaintext scopedPDU's declared BER length.
func desCBCDecrypt(key, iv, ciphertext []byte) ([]byte, error) {
	if len(ciphertext)%des.BlockSize != 0 {
		return nil, errf(DecryptionError, "ciphertext is not a multiple of the DES block size")
	}
	block, err := des.NewCipher(key)
	if err != nil {
		return nil, wrapErr(ScGeneralFailure, err, "creating DES cipher")
	}
	out := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, ciphertext)
	return out, nil
}

// aesCFB128 runs AES-CFB128 in the given direction; CFB is symmetric
// apart from which of NewCFBEncrypter/NewCFBDecrypter is used.
func aesCFB128(key, iv, in []byte, encrypt bool) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, wrapErr(ScGeneralFailure, err, "creating AES cipher")
	}
	out := make([]byte, len(in))
	var stream cipher.Stream
	if encrypt {
		stream = cipher.NewCFBEncrypter(block, iv)
	} else {
		stream = cipher.NewCFBDecrypter(block, iv)
	}
	stream.XORKeyStream(out, in)
	return out, nil
}
