package gosnmp

// Copyright 2012-2016 The GoSNMP Authors. All rights reserved.  Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

// Per-ValueType wire encode/decode, sitting on top of the BER primitives
// in ber.go. Shared by both the forward and reverse PDU builders, since
// the wire bytes for a single VarBind's TLV don't depend on which mode
// is assembling the surrounding SEQUENCE.

func valueTag(t ValueType) Asn1BER {
	switch t {
	case TypeInteger32:
		return BERInteger
	case TypeCounter32:
		return BERCounter32
	case TypeGauge32, TypeUnsigned32:
		return BERGauge32
	case TypeTimeTicks:
		return BERTimeTicks
	case TypeUInteger:
		return BERUinteger32
	case TypeCounter64:
		return BERCounter64
	case TypeOctetString:
		return BEROctetString
	case TypeIPAddress:
		return BERIPAddress
	case TypeOpaque, TypeOpaqueFloat, TypeOpaqueDouble, TypeOpaqueInt64, TypeOpaqueUint64:
		return BEROpaque
	case TypeBitString:
		return BERBitString
	case TypeObjectIdentifier:
		return BERObjectIdentifier
	case TypeNull:
		return BERNull
	case TypeNoSuchObject:
		return BERNoSuchObject
	case TypeNoSuchInstance:
		return BERNoSuchInstance
	case TypeEndOfMibView:
		return BEREndOfMibView
	default:
		return BERUnknown
	}
}

// buildValueBody renders vb's value to its wire body (tag excluded; the
// caller wraps with buildTLV or reverseBuffer.WrapTLV).
func buildValueBody(vb *VarBind) ([]byte, error) {
	switch vb.Type {
	case TypeInteger32:
		v, _ := vb.Value.(int64)
		return marshalInt64(v), nil
	case TypeCounter32, TypeGauge32, TypeTimeTicks, TypeUnsigned32, TypeUInteger:
		v, _ := vb.Value.(int64)
		return marshalUvarInt(uint64(uint32(v))), nil
	case TypeCounter64:
		v, _ := vb.Value.(uint64)
		return marshalUvarInt(v), nil
	case TypeOctetString, TypeBitString:
		b, _ := vb.Value.([]byte)
		return b, nil
	case TypeIPAddress:
		b, _ := vb.Value.([]byte)
		if len(b) != 4 {
			return nil, errf(BadAsn1Build, "IpAddress must be exactly 4 bytes")
		}
		return b, nil
	case TypeObjectIdentifier:
		o, _ := vb.Value.(OID)
		return marshalOID(o)
	case TypeNull, TypeNoSuchObject, TypeNoSuchInstance, TypeEndOfMibView:
		return nil, nil
	case TypeOpaque:
		b, _ := vb.Value.([]byte)
		return b, nil
	case TypeOpaqueFloat:
		f, _ := vb.Value.(float32)
		payload := marshalFloat(f)
		return buildOpaqueSpecial(berOpaqueFloatSub, payload), nil
	case TypeOpaqueDouble:
		d, _ := vb.Value.(float64)
		payload := marshalDouble(d)
		return buildOpaqueSpecial(berOpaqueDoubleSub, payload), nil
	case TypeOpaqueInt64:
		v, _ := vb.Value.(int64)
		payload := marshalInt64(v)
		return buildOpaqueSpecial(berOpaqueInt64Sub, payload), nil
	case TypeOpaqueUint64:
		v, _ := vb.Value.(uint64)
		payload := marshalUvarInt(v)
		return buildOpaqueSpecial(berOpaqueUint64Sub, payload), nil
	default:
		return nil, errf(BadAsn1Build, "unsupported value type %v", vb.Type)
	}
}

func buildOpaqueSpecial(subtag byte, payload []byte) []byte {
	out := []byte{berOpaqueTag, subtag}
	out = append(out, marshalLength(len(payload))...)
	out = append(out, payload...)
	return out
}

// parseValue decodes a VarBind's value from its wire tag and body.
func parseValue(tag Asn1BER, body []byte) (ValueType, interface{}, error) {
	switch tag {
	case BERInteger:
		return TypeInteger32, parseInt64(body), nil
	case BERCounter32:
		return TypeCounter32, int64(parseUvarInt(body)), nil
	case BERGauge32:
		return TypeGauge32, int64(parseUvarInt(body)), nil
	case BERTimeTicks:
		return TypeTimeTicks, int64(parseUvarInt(body)), nil
	case BERUinteger32:
		return TypeUInteger, int64(parseUvarInt(body)), nil
	case BERCounter64:
		return TypeCounter64, parseUvarInt(body), nil
	case BEROctetString:
		return TypeOctetString, append([]byte{}, body...), nil
	case BERIPAddress:
		if len(body) != 4 {
			return 0, nil, errf(Asn1ParseErr, "IpAddress requires exactly 4 bytes, got %d", len(body))
		}
		return TypeIPAddress, append([]byte{}, body...), nil
	case BERBitString:
		return TypeBitString, append([]byte{}, body...), nil
	case BERObjectIdentifier:
		oid, err := parseOIDBody(body)
		if err != nil {
			return 0, nil, err
		}
		return TypeObjectIdentifier, oid, nil
	case BERNull:
		return TypeNull, nil, nil
	case BERNoSuchObject:
		return TypeNoSuchObject, nil, nil
	case BERNoSuchInstance:
		return TypeNoSuchInstance, nil, nil
	case BEREndOfMibView:
		return TypeEndOfMibView, nil, nil
	case BEROpaque:
		if t, v, ok, err := parseOpaqueSpecial(body); ok || err != nil {
			return t, v, err
		}
		return TypeOpaque, append([]byte{}, body...), nil
	default:
		return 0, nil, errf(Asn1ParseErr, "unrecognized value tag 0x%02x", byte(tag))
	}
}

func parseOpaqueSpecial(body []byte) (ValueType, interface{}, bool, error) {
	if len(body) < 2 || body[0] != berOpaqueTag {
		return 0, nil, false, nil
	}
	subtag := body[1]
	length, hdr, err := parseLength(body[2:])
	if err != nil {
		return 0, nil, true, err
	}
	payload := body[2+hdr : 2+hdr+length]
	switch subtag {
	case berOpaqueFloatSub:
		f, err := parseFloat(payload)
		return TypeOpaqueFloat, f, true, err
	case berOpaqueDoubleSub:
		d, err := parseDouble(payload)
		return TypeOpaqueDouble, d, true, err
	case berOpaqueInt64Sub:
		return TypeOpaqueInt64, parseInt64(payload), true, nil
	case berOpaqueUint64Sub:
		return TypeOpaqueUint64, parseUvarInt(payload), true, nil
	default:
		return 0, nil, false, nil
	}
}

// buildVarBind renders one VarBind as a SEQUENCE { name OID, value ANY }.
func buildVarBind(vb *VarBind) ([]byte, error) {
	nameBody, err := marshalOID(vb.Name)
	if err != nil {
		return nil, err
	}
	nameTLV := buildTLV(BERObjectIdentifier, nameBody)
	valBody, err := buildValueBody(vb)
	if err != nil {
		return nil, err
	}
	valTLV := buildTLV(valueTag(vb.Type), valBody)
	inner := append(append([]byte{}, nameTLV...), valTLV...)
	return buildTLV(BERSequence, inner), nil
}

// parseVarBind parses one VarBind SEQUENCE, returning bytes consumed.
func parseVarBind(buf []byte) (*VarBind, int, error) {
	seqBody, consumed, err := expectTLV(buf, BERSequence)
	if err != nil {
		return nil, 0, err
	}
	nameBody, n, err := expectTLV(seqBody, BERObjectIdentifier)
	if err != nil {
		return nil, 0, err
	}
	name, err := parseOIDBody(nameBody)
	if err != nil {
		return nil, 0, err
	}
	rest := seqBody[n:]
	tag, valBody, _, err := parseTLV(rest)
	if err != nil {
		return nil, 0, err
	}
	t, v, err := parseValue(tag, valBody)
	if err != nil {
		return nil, 0, err
	}
	return &VarBind{Name: name, Type: t, Value: v}, consumed, nil
}
