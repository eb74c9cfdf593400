package gosnmp

// Copyright 2012-2016 The GoSNMP Authors. All rights reserved.  Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

import (
	"strconv"
	"strings"
)

// MaxOIDLen is the maximum number of sub-identifiers an OID may carry.
const MaxOIDLen = 128

// OID is an ordered sequence of 32-bit sub-identifiers.
type OID []uint32

// String renders the OID in dotted form, e.g. "1.3.6.1.2.1.1.5.0".
func (o OID) String() string {
	if len(o) == 0 {
		return ""
	}
	var b strings.Builder
	for i, sub := range o {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(strconv.FormatUint(uint64(sub), 10))
	}
	return b.String()
}

// Clone returns an independent copy of the OID.
func (o OID) Clone() OID {
	if o == nil {
		return nil
	}
	c := make(OID, len(o))
	copy(c, o)
	return c
}

// Compare implements the usual three-way lexicographic ordering used for
// MIB walks: oidCompare(a,b) < 0 iff a sorts before b. Differs from a
// plain slice compare only in that a strict prefix always sorts first.
func (o OID) Compare(other OID) int {
	n := len(o)
	if len(other) < n {
		n = len(other)
	}
	for i := 0; i < n; i++ {
		if o[i] < other[i] {
			return -1
		}
		if o[i] > other[i] {
			return 1
		}
	}
	switch {
	case len(o) < len(other):
		return -1
	case len(o) > len(other):
		return 1
	default:
		return 0
	}
}

// HasPrefix reports whether o begins with prefix.
func (o OID) HasPrefix(prefix OID) bool {
	if len(prefix) > len(o) {
		return false
	}
	for i := range prefix {
		if o[i] != prefix[i] {
			return false
		}
	}
	return true
}

// Equal reports exact equality.
func (o OID) Equal(other OID) bool {
	return o.Compare(other) == 0
}

// ParseOID parses a dotted-decimal OID string, tolerating a leading dot.
func ParseOID(s string) (OID, error) {
	s = strings.TrimPrefix(s, ".")
	if s == "" {
		return OID{}, nil
	}
	parts := strings.Split(s, ".")
	if len(parts) > MaxOIDLen {
		return nil, errf(OidNonincreasing, "oid %q exceeds %d sub-identifiers", s, MaxOIDLen)
	}
	out := make(OID, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return nil, wrapErr(BadParse, err, "invalid sub-identifier \""+p+"\" in oid \""+s+"\"")
		}
		out[i] = uint32(v)
	}
	return out, nil
}

// MustParseOID is a convenience for literal OIDs in code and tests.
func MustParseOID(s string) OID {
	o, err := ParseOID(s)
	if err != nil {
		panic(err)
	}
	return o
}
