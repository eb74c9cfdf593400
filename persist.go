package gosnmp

// Copyright 2012-2016 The GoSNMP Authors. All rights reserved.  Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

// Persistence, grounded on the boots
// file (engineBoots survives a restart and is incremented exactly once
// at startup) and on the USM user table's need to keep localized keys
// across restarts without re-deriving from a stored passphrase.

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// SaveBoots atomically writes boots to path, the on-disk counterpart of
// Engine.LocalBoots.
func SaveBoots(path string, boots uint32) error {
	return atomicWriteFile(path, []byte(strconv.FormatUint(uint64(boots), 10)+"\n"))
}

// LoadBoots reads a previously-saved boots counter; a missing file reads
// as 0 (first-ever start).
func LoadBoots(path string) (uint32, error) {
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, wrapErr(ScGeneralFailure, err, "reading boots file")
	}
	v, err := strconv.ParseUint(strings.TrimSpace(string(b)), 10, 32)
	if err != nil {
		return 0, wrapErr(ScGeneralFailure, err, "parsing boots file")
	}
	return uint32(v), nil
}

// InitLocalBoots loads the persisted boots counter from path, increments
// it by one (LcdTime.c increments engineBoots once per cold start), and
// persists the new value before returning it. If boots would overflow
// to 2^31-1 (the RFC 3414 "max boots" value), it freezes there instead
// of wrapping, since RFC 3414 §B defines that value as a permanent
// can't-be-authenticated-again marker.
func InitLocalBoots(path string) (uint32, error) {
	boots, err := LoadBoots(path)
	if err != nil {
		return 0, err
	}
	const maxBoots = 1<<31 - 1
	if boots < maxBoots {
		boots++
	}
	if err := SaveBoots(path, boots); err != nil {
		return 0, err
	}
	return boots, nil
}

// SaveUsmUsers writes users to path, one line per user, hex-encoding
// binary fields so the file stays diffable text:
//
//	engineIDHex name authProto authKeyHex privProto privKeyHex
func SaveUsmUsers(path string, users []*UsmUser) error {
	var b strings.Builder
	for _, u := range users {
		fmt.Fprintf(&b, "%s\t%s\t%d\t%s\t%d\t%s\n",
			hex.EncodeToString(u.EngineID), u.Name,
			u.AuthProtocol, hex.EncodeToString(u.AuthKey),
			u.PrivProtocol, hex.EncodeToString(u.PrivKey))
	}
	return atomicWriteFile(path, []byte(b.String()))
}

// LoadUsmUsers reads a file written by SaveUsmUsers.
func LoadUsmUsers(path string) ([]*UsmUser, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapErr(ScGeneralFailure, err, "reading usm user file")
	}
	var users []*UsmUser
	for _, line := range strings.Split(string(raw), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 6 {
			return nil, errf(ScGeneralFailure, "malformed usm user line %q", line)
		}
		engineID, err := hex.DecodeString(fields[0])
		if err != nil {
			return nil, wrapErr(ScGeneralFailure, err, "decoding engineID")
		}
		authProto, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, wrapErr(ScGeneralFailure, err, "parsing auth protocol")
		}
		authKey, err := hex.DecodeString(fields[3])
		if err != nil {
			return nil, wrapErr(ScGeneralFailure, err, "decoding auth key")
		}
		privProto, err := strconv.Atoi(fields[4])
		if err != nil {
			return nil, wrapErr(ScGeneralFailure, err, "parsing priv protocol")
		}
		privKey, err := hex.DecodeString(fields[5])
		if err != nil {
			return nil, wrapErr(ScGeneralFailure, err, "decoding priv key")
		}
		users = append(users, &UsmUser{
			EngineID:     engineID,
			Name:         fields[1],
			AuthProtocol: AuthProtocol(authProto),
			AuthKey:      authKey,
			PrivProtocol: PrivProtocol(privProto),
			PrivKey:      privKey,
		})
	}
	return users, nil
}

func atomicWriteFile(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return wrapErr(ScGeneralFailure, err, "writing temp file")
	}
	if err := os.Rename(tmp, path); err != nil {
		return wrapErr(ScGeneralFailure, err, "renaming temp file into place")
	}
	return nil
}
