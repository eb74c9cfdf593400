package gosnmp

// Copyright 2012-2016 The GoSNMP Authors. All rights reserved.  Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

// Key tools: passphrase -> Ku expansion, Ku -> localized Kul
// derivation, and KeyChange encode/decode, grounded on RFC 3414's
// generate_Ku / Generate_kul / encode_keychange key-derivation
// algorithms (RFC 3414 §A.1-A.3, §A.5).

const minPassphraseLen = 8

// expansionTarget is the number of bytes a passphrase is cyclically
// repeated to before hashing (RFC 3414 §A.2: "1,048,576 octets").
const expansionTarget = 1048576

// DeriveKu expands a passphrase into an unlocalized key Ku: the
// passphrase is repeated cyclically to exactly 1 MiB and hashed with
// the given auth protocol. Passphrases shorter than 8 characters are
// rejected.
func DeriveKu(proto AuthProtocol, passphrase string) ([]byte, error) {
	if len(passphrase) < minPassphraseLen {
		return nil, errf(ScGeneralFailure, "passphrase must be at least %d characters", minPassphraseLen)
	}
	h, err := newHash(proto)
	if err != nil {
		return nil, err
	}
	var chunk [64]byte
	pi := 0
	for written := 0; written < expansionTarget; written += 64 {
		for i := range chunk {
			chunk[i] = passphrase[pi%len(passphrase)]
			pi++
		}
		h.Write(chunk[:])
	}
	return h.Sum(nil), nil
}

// DeriveKul localizes Ku to engineID: Kul = H(Ku || engineID || Ku)
// (RFC 3414 §A.2).
func DeriveKul(proto AuthProtocol, ku []byte, engineID []byte) ([]byte, error) {
	h, err := newHash(proto)
	if err != nil {
		return nil, err
	}
	h.Write(ku)
	h.Write(engineID)
	h.Write(ku)
	return h.Sum(nil), nil
}

// DeriveLocalizedKey is the one-shot passphrase->Kul convenience named
// in SPEC_FULL.md, grounded on Keytools.c's combined call sequence.
func DeriveLocalizedKey(proto AuthProtocol, passphrase string, engineID []byte) ([]byte, error) {
	ku, err := DeriveKu(proto, passphrase)
	if err != nil {
		return nil, err
	}
	return DeriveKul(proto, ku, engineID)
}

// EncodeKeyChange produces a KeyChange value transitioning from oldKey
// to newKey: random || XOR(H(oldKey||random), newKey) (RFC 3414 §A.3).
// The random prefix is the hash's digest size (16 bytes for MD5, 20 for
// SHA1), matching each protocol's native key width.
func EncodeKeyChange(proto AuthProtocol, oldKey, newKey []byte) ([]byte, error) {
	n := hashDigestSize(proto)
	if n == 0 {
		return nil, errf(ScGeneralFailure, "unsupported auth protocol for key change")
	}
	random, err := cryptoRandBytes(n)
	if err != nil {
		return nil, err
	}
	h, err := newHash(proto)
	if err != nil {
		return nil, err
	}
	h.Write(oldKey)
	h.Write(random)
	mask := h.Sum(nil)

	if len(newKey) > len(mask) {
		return nil, errf(ScGeneralFailure, "new key longer than digest size")
	}
	xored := make([]byte, len(newKey))
	for i := range newKey {
		xored[i] = mask[i] ^ newKey[i]
	}
	return append(random, xored...), nil
}

// DecodeKeyChange inverts EncodeKeyChange given the old key, recovering
// newKey.
func DecodeKeyChange(proto AuthProtocol, oldKey, keyChange []byte) ([]byte, error) {
	n := hashDigestSize(proto)
	if n == 0 {
		return nil, errf(ScGeneralFailure, "unsupported auth protocol for key change")
	}
	if len(keyChange) <= n {
		return nil, errf(BadParse, "key change value too short")
	}
	random := keyChange[:n]
	xored := keyChange[n:]

	h, err := newHash(proto)
	if err != nil {
		return nil, err
	}
	h.Write(oldKey)
	h.Write(random)
	mask := h.Sum(nil)

	newKey := make([]byte, len(xored))
	for i := range xored {
		newKey[i] = mask[i] ^ xored[i]
	}
	return newKey, nil
}
