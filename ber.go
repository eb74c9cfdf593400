package gosnmp

// Copyright 2012-2016 The GoSNMP Authors. All rights reserved.  Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

// BER (Basic Encoding Rules) primitives. Two emission modes are
// supported: forward build, which assembles each TLV's value first and
// then prefixes tag+length via bytes.Buffer, and reverse build, which
// grows a buffer from its tail so that a large scoped PDU is encoded
// without a second length-measuring pass. Both must produce
// byte-identical output for identical input.

import (
	"encoding/binary"
	"math"
)

// marshalLength encodes a BER length using short form below 128 and
// long form otherwise.
func marshalLength(n int) []byte {
	if n < 0 {
		n = 0
	}
	if n < 128 {
		return []byte{byte(n)}
	}
	var tmp []byte
	v := uint64(n)
	for v > 0 {
		tmp = append([]byte{byte(v)}, tmp...)
		v >>= 8
	}
	return append([]byte{0x80 | byte(len(tmp))}, tmp...)
}

// parseLength decodes a BER length header, returning the decoded length
// and the number of header bytes consumed. It rejects indefinite-form
// lengths (0x80) and lengths whose declared size exceeds the remaining
// buffer.
func parseLength(buf []byte) (length int, headerLen int, err error) {
	if len(buf) == 0 {
		return 0, 0, errf(BadParse, "empty buffer while parsing length")
	}
	if buf[0] < 0x80 {
		return int(buf[0]), 1, nil
	}
	n := int(buf[0] & 0x7f)
	if n == 0 {
		return 0, 0, errf(BadParse, "indefinite-form BER length is not supported")
	}
	if n > 4 || n+1 > len(buf) {
		return 0, 0, errf(TooLong, "BER length header of %d bytes exceeds remaining buffer", n)
	}
	var v int
	for _, b := range buf[1 : 1+n] {
		v = v<<8 | int(b)
	}
	if v > len(buf)-(1+n) {
		return 0, 0, errf(TooLong, "BER length %d exceeds remaining buffer of %d bytes", v, len(buf)-(1+n))
	}
	return v, 1 + n, nil
}

// buildTLV assembles tag+length+value in forward order.
func buildTLV(tag Asn1BER, value []byte) []byte {
	length := marshalLength(len(value))
	out := make([]byte, 0, 1+len(length)+len(value))
	out = append(out, byte(tag))
	out = append(out, length...)
	out = append(out, value...)
	return out
}

// parseTLV splits the next tag+length+value off buf, returning the
// value slice and the total number of bytes consumed (header + value).
func parseTLV(buf []byte) (tag Asn1BER, value []byte, consumed int, err error) {
	if len(buf) == 0 {
		return 0, nil, 0, errf(BadParse, "empty buffer while parsing TLV")
	}
	tag = Asn1BER(buf[0])
	length, hdr, err := parseLength(buf[1:])
	if err != nil {
		return 0, nil, 0, err
	}
	total := 1 + hdr + length
	if total > len(buf) {
		return 0, nil, 0, errf(TooLong, "TLV declares %d bytes, only %d remain", total, len(buf))
	}
	return tag, buf[1+hdr : total], total, nil
}

// expectTLV is parseTLV plus a tag check, the shape nearly every
// higher-level field parser needs.
func expectTLV(buf []byte, want Asn1BER) (value []byte, consumed int, err error) {
	tag, value, consumed, err := parseTLV(buf)
	if err != nil {
		return nil, 0, err
	}
	if tag != want {
		return nil, 0, errf(Asn1ParseErr, "expected tag 0x%02x, got 0x%02x", byte(want), byte(tag))
	}
	return value, consumed, nil
}

// marshalInt64 encodes v as a minimal-length two's-complement BER
// INTEGER, covering the full 1..8 byte width.
func marshalInt64(v int64) []byte {
	buf := []byte{byte(v)}
	n := v >> 8
	for {
		top := buf[0]
		if (n == 0 && top&0x80 == 0) || (n == -1 && top&0x80 != 0) {
			break
		}
		buf = append([]byte{byte(n)}, buf...)
		n >>= 8
	}
	return buf
}

// parseInt64 sign-extends a two's-complement BER INTEGER payload.
func parseInt64(buf []byte) int64 {
	if len(buf) == 0 {
		return 0
	}
	var v int64
	if buf[0]&0x80 != 0 {
		v = -1
	}
	for _, b := range buf {
		v = (v << 8) | int64(b)
	}
	return v
}

// marshalUvarInt encodes v as an unsigned BER INTEGER: minimal
// big-endian bytes, with a leading zero byte inserted if the MSB of the
// first value byte is set, so the value cannot be mistaken for negative.
func marshalUvarInt(v uint64) []byte {
	if v == 0 {
		return []byte{0}
	}
	var buf []byte
	for v > 0 {
		buf = append([]byte{byte(v)}, buf...)
		v >>= 8
	}
	if buf[0]&0x80 != 0 {
		buf = append([]byte{0}, buf...)
	}
	return buf
}

// parseUvarInt decodes an unsigned BER INTEGER payload, ignoring the
// sign bit (the caller is expected to know the field is unsigned from
// its ValueType).
func parseUvarInt(buf []byte) uint64 {
	var v uint64
	for _, b := range buf {
		v = (v << 8) | uint64(b)
	}
	return v
}

func appendBase128(out []byte, v uint32) []byte {
	if v == 0 {
		return append(out, 0)
	}
	var tmp []byte
	for v > 0 {
		tmp = append([]byte{byte(v & 0x7f)}, tmp...)
		v >>= 7
	}
	for i := 0; i < len(tmp)-1; i++ {
		tmp[i] |= 0x80
	}
	return append(out, tmp...)
}

func readBase128(buf []byte) (v uint32, consumed int, err error) {
	for i, b := range buf {
		if i == 4 && b&0x80 != 0 {
			return 0, 0, errf(Asn1ParseErr, "oid sub-identifier exceeds 32 bits")
		}
		v = v<<7 | uint32(b&0x7f)
		if b&0x80 == 0 {
			return v, i + 1, nil
		}
	}
	return 0, 0, errf(BadParse, "truncated oid sub-identifier")
}

// marshalOID encodes an OID body (without tag/length) using the
// standard two-subid-in-first-byte compaction.
func marshalOID(oid OID) ([]byte, error) {
	subids := oid
	switch len(subids) {
	case 0:
		subids = OID{0, 0}
	case 1:
		subids = OID{subids[0], 0}
	}
	if subids[0] > 2 || (subids[0] < 2 && subids[1] >= 40) {
		return nil, errf(BadAsn1Build, "oid %s has an invalid first arc pair", oid)
	}
	var out []byte
	out = appendBase128(out, subids[0]*40+subids[1])
	for _, s := range subids[2:] {
		out = appendBase128(out, s)
	}
	return out, nil
}

// parseOIDBody decodes an OID body (without tag/length).
func parseOIDBody(buf []byte) (OID, error) {
	if len(buf) == 0 {
		return OID{}, nil
	}
	first, n, err := readBase128(buf)
	if err != nil {
		return nil, err
	}
	out := make(OID, 0, len(buf)+1)
	switch {
	case first < 40:
		out = append(out, 0, first)
	case first < 80:
		out = append(out, 1, first-40)
	default:
		out = append(out, 2, first-80)
	}
	rest := buf[n:]
	for len(rest) > 0 {
		v, c, err := readBase128(rest)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
		rest = rest[c:]
	}
	if len(out) > MaxOIDLen {
		return nil, errf(BadParse, "oid exceeds %d sub-identifiers", MaxOIDLen)
	}
	return out, nil
}

func marshalFloat(f float32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], math.Float32bits(f))
	return b[:]
}

func parseFloat(buf []byte) (float32, error) {
	if len(buf) != 4 {
		return 0, errf(BadParse, "Opaque-Float requires exactly 4 bytes, got %d", len(buf))
	}
	return math.Float32frombits(binary.BigEndian.Uint32(buf)), nil
}

func marshalDouble(d float64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], math.Float64bits(d))
	return b[:]
}

func parseDouble(buf []byte) (float64, error) {
	if len(buf) != 8 {
		return 0, errf(BadParse, "Opaque-Double requires exactly 8 bytes, got %d", len(buf))
	}
	return math.Float64frombits(binary.BigEndian.Uint64(buf)), nil
}

// reverseBuffer is a byte buffer that grows by prepending, doubling its
// backing array when it runs out of head-room.
type reverseBuffer struct {
	buf    []byte
	offset int
}

func newReverseBuffer() *reverseBuffer {
	b := make([]byte, 64)
	return &reverseBuffer{buf: b, offset: len(b)}
}

func (r *reverseBuffer) ensure(n int) {
	if r.offset >= n {
		return
	}
	validLen := len(r.buf) - r.offset
	newSize := len(r.buf) * 2
	for newSize-validLen < n {
		newSize *= 2
	}
	nb := make([]byte, newSize)
	newOffset := newSize - validLen
	copy(nb[newOffset:], r.buf[r.offset:])
	r.buf = nb
	r.offset = newOffset
}

// Prepend inserts b immediately before the current contents.
func (r *reverseBuffer) Prepend(b []byte) {
	r.ensure(len(b))
	r.offset -= len(b)
	copy(r.buf[r.offset:], b)
}

// PrependByte inserts a single byte before the current contents.
func (r *reverseBuffer) PrependByte(b byte) {
	r.ensure(1)
	r.offset--
	r.buf[r.offset] = b
}

// Len returns the number of valid bytes currently held.
func (r *reverseBuffer) Len() int { return len(r.buf) - r.offset }

// Bytes returns the valid region; callers must not retain it across a
// further Prepend call, since growth may reallocate.
func (r *reverseBuffer) Bytes() []byte { return r.buf[r.offset:] }

// WrapTLV prepends a length header for valueLen bytes (the caller's
// count of the value bytes already Prepend-ed) and a tag byte,
// completing a TLV that was built value-first.
func (r *reverseBuffer) WrapTLV(tag Asn1BER, valueLen int) {
	r.Prepend(marshalLength(valueLen))
	r.PrependByte(byte(tag))
}

// PrependTLVBytes writes a complete, already-assembled TLV (used when a
// child's forward-built bytes are being spliced into a reverse build,
// e.g. a caller-supplied opaque securityParameters blob).
func (r *reverseBuffer) PrependTLVBytes(full []byte) {
	r.Prepend(full)
}
