package gosnmp

// Copyright 2012-2016 The GoSNMP Authors. All rights reserved.  Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

import "fmt"

// Asn1BER is the wire tag of a variable binding's value, kept as its own
// type (rather than folding it into ValueType) because several tags
// share representation but not wire byte, e.g. Counter32 and Gauge32
// are both uint32-valued but tagged differently.
type Asn1BER byte

// Tags used by the BER codec and VarBind model. Values match RFC
// 1155/2578/3416.
const (
	BERUnknown          Asn1BER = 0x00
	BERInteger          Asn1BER = 0x02
	BERBitString        Asn1BER = 0x03
	BEROctetString      Asn1BER = 0x04
	BERNull             Asn1BER = 0x05
	BERObjectIdentifier Asn1BER = 0x06
	BERSequence         Asn1BER = 0x30

	BERIPAddress   Asn1BER = 0x40
	BERCounter32   Asn1BER = 0x41
	BERGauge32     Asn1BER = 0x42
	BERTimeTicks   Asn1BER = 0x43
	BEROpaque      Asn1BER = 0x44
	BERNsapAddress Asn1BER = 0x45
	BERCounter64   Asn1BER = 0x46
	BERUinteger32  Asn1BER = 0x47

	BERNoSuchObject   Asn1BER = 0x80
	BERNoSuchInstance Asn1BER = 0x81
	BEREndOfMibView   Asn1BER = 0x82

	BERGetRequest     Asn1BER = 0xa0
	BERGetNextRequest Asn1BER = 0xa1
	BERGetResponse    Asn1BER = 0xa2
	BERSetRequest     Asn1BER = 0xa3
	BERTrap           Asn1BER = 0xa4
	BERGetBulkRequest Asn1BER = 0xa5
	BERInformRequest  Asn1BER = 0xa6
	BERSNMPv2Trap     Asn1BER = 0xa7
	BERReport         Asn1BER = 0xa8

	// Opaque sub-tags per RFC 2741 float/double/int64/uint64 extensions,
	// carried inside a BEROpaque octet string as {0x9f, subtag, len, ...}.
	berOpaqueTag       = 0x9f
	berOpaqueFloatSub  = 0x78
	berOpaqueDoubleSub = 0x79
	berOpaqueInt64Sub  = 0x7a
	berOpaqueUint64Sub = 0x7b
)

// ValueType is the in-memory, platform-independent value variant of a
// VarBind, independent of the exact wire tag used to carry it.
type ValueType int

const (
	TypeInteger32 ValueType = iota
	TypeCounter32
	TypeCounter64
	TypeGauge32
	TypeTimeTicks
	TypeUnsigned32
	TypeUInteger
	TypeOctetString
	TypeIPAddress
	TypeOpaque
	TypeBitString
	TypeObjectIdentifier
	TypeNull
	TypeNoSuchObject
	TypeNoSuchInstance
	TypeEndOfMibView
	TypeOpaqueFloat
	TypeOpaqueDouble
	TypeOpaqueInt64
	TypeOpaqueUint64
)

func (t ValueType) String() string {
	switch t {
	case TypeInteger32:
		return "Integer32"
	case TypeCounter32:
		return "Counter32"
	case TypeCounter64:
		return "Counter64"
	case TypeGauge32:
		return "Gauge32"
	case TypeTimeTicks:
		return "TimeTicks"
	case TypeUnsigned32:
		return "Unsigned32"
	case TypeUInteger:
		return "UInteger"
	case TypeOctetString:
		return "OctetString"
	case TypeIPAddress:
		return "IpAddress"
	case TypeOpaque:
		return "Opaque"
	case TypeBitString:
		return "BitString"
	case TypeObjectIdentifier:
		return "ObjectIdentifier"
	case TypeNull:
		return "Null"
	case TypeNoSuchObject:
		return "NoSuchObject"
	case TypeNoSuchInstance:
		return "NoSuchInstance"
	case TypeEndOfMibView:
		return "EndOfMibView"
	case TypeOpaqueFloat:
		return "Opaque-Float"
	case TypeOpaqueDouble:
		return "Opaque-Double"
	case TypeOpaqueInt64:
		return "Opaque-Int64"
	case TypeOpaqueUint64:
		return "Opaque-Uint64"
	default:
		return fmt.Sprintf("ValueType(%d)", int(t))
	}
}

// integerFamily is the set of types the value setter accepts from any
// platform integer width and stores as an int64, without narrowing.
func (t ValueType) integerFamily() bool {
	switch t {
	case TypeInteger32, TypeCounter32, TypeGauge32, TypeTimeTicks, TypeUnsigned32, TypeUInteger:
		return true
	default:
		return false
	}
}

// VarBind is a (name, typed value) pair. Value's concrete Go type is
// determined by Type:
//
//	Integer32, Counter32, Gauge32, TimeTicks, Unsigned32, UInteger -> int64
//	Counter64, Opaque-Uint64                                       -> uint64
//	Opaque-Int64                                                   -> int64
//	OctetString, IpAddress, Opaque, BitString                      -> []byte
//	ObjectIdentifier                                                -> OID
//	Opaque-Float                                                   -> float32
//	Opaque-Double                                                  -> float64
//	Null, NoSuchObject, NoSuchInstance, EndOfMibView               -> nil
type VarBind struct {
	Name  OID
	Type  ValueType
	Value interface{}
}

// NewVarBind builds a VarBind, applying the same coercion rules as SetValue.
func NewVarBind(name OID, t ValueType, v interface{}) (*VarBind, error) {
	vb := &VarBind{Name: name.Clone(), Type: t}
	if err := vb.SetValue(t, v); err != nil {
		return nil, err
	}
	return vb, nil
}

// SetValue coerces v onto the wire-canonical representation for t. For
// integer-family types any of the platform int widths are accepted and
// truncated to int64 with no diagnostic path beyond the error return:
// values are stored at canonical width and the codec's length rules
// take it from there.
func (vb *VarBind) SetValue(t ValueType, v interface{}) error {
	switch t {
	case TypeInteger32, TypeCounter32, TypeGauge32, TypeTimeTicks, TypeUnsigned32, TypeUInteger:
		i, err := toInt64(v)
		if err != nil {
			return err
		}
		vb.Type, vb.Value = t, i
	case TypeCounter64, TypeOpaqueUint64:
		u, err := toUint64(v)
		if err != nil {
			return err
		}
		vb.Type, vb.Value = t, u
	case TypeOpaqueInt64:
		i, err := toInt64(v)
		if err != nil {
			return err
		}
		vb.Type, vb.Value = t, i
	case TypeOctetString, TypeOpaque, TypeBitString:
		b, err := toBytes(v)
		if err != nil {
			return err
		}
		vb.Type, vb.Value = t, b
	case TypeIPAddress:
		b, err := toBytes(v)
		if err != nil {
			return err
		}
		if len(b) != 4 {
			return errf(BadAsn1Build, "IpAddress must be exactly 4 bytes, got %d", len(b))
		}
		vb.Type, vb.Value = t, b
	case TypeObjectIdentifier:
		o, ok := v.(OID)
		if !ok {
			return errf(BadAsn1Build, "ObjectIdentifier value must be an OID")
		}
		if len(o) > MaxOIDLen {
			return errf(BadAsn1Build, "oid exceeds %d sub-identifiers", MaxOIDLen)
		}
		vb.Type, vb.Value = t, o.Clone()
	case TypeOpaqueFloat:
		f, ok := v.(float32)
		if !ok {
			return errf(BadAsn1Build, "Opaque-Float value must be float32")
		}
		vb.Type, vb.Value = t, f
	case TypeOpaqueDouble:
		d, ok := v.(float64)
		if !ok {
			return errf(BadAsn1Build, "Opaque-Double value must be float64")
		}
		vb.Type, vb.Value = t, d
	case TypeNull, TypeNoSuchObject, TypeNoSuchInstance, TypeEndOfMibView:
		vb.Type, vb.Value = t, nil
	default:
		return errf(BadAsn1Build, "unknown value type %v", t)
	}
	return nil
}

func toInt64(v interface{}) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int8:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint:
		return int64(n), nil
	case uint8:
		return int64(n), nil
	case uint16:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	case uint64:
		return int64(n), nil
	default:
		return 0, errf(BadAsn1Build, "value %v is not an integer type", v)
	}
}

func toUint64(v interface{}) (uint64, error) {
	i, err := toInt64(v)
	if err != nil {
		if u, ok := v.(uint64); ok {
			return u, nil
		}
		return 0, err
	}
	return uint64(i), nil
}

func toBytes(v interface{}) ([]byte, error) {
	switch b := v.(type) {
	case []byte:
		if b == nil {
			return []byte{}, nil
		}
		return b, nil
	case string:
		return []byte(b), nil
	default:
		return nil, errf(BadAsn1Build, "value %v is not a byte string", v)
	}
}
