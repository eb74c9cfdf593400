package gosnmp

// Copyright 2012-2016 The GoSNMP Authors. All rights reserved.  Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

// buildPDUBody renders a PDU's command-specific SEQUENCE: request-id,
// error-status/non-repeaters, error-index/max-repetitions, and the
// variable-binding list, per RFC 3416 §3.
func buildPDUBody(p *PDU) ([]byte, error) {
	var body []byte
	body = append(body, buildTLV(BERInteger, marshalInt64(int64(p.RequestID)))...)
	if p.Command == GetBulkRequest {
		body = append(body, buildTLV(BERInteger, marshalInt64(int64(p.NonRepeaters)))...)
		body = append(body, buildTLV(BERInteger, marshalInt64(int64(p.MaxRepetitions)))...)
	} else {
		body = append(body, buildTLV(BERInteger, marshalInt64(int64(p.ErrorStatus)))...)
		body = append(body, buildTLV(BERInteger, marshalInt64(int64(p.ErrorIndex)))...)
	}
	var vbs []byte
	for _, vb := range p.VarBinds {
		b, err := buildVarBind(vb)
		if err != nil {
			return nil, err
		}
		vbs = append(vbs, b...)
	}
	body = append(body, buildTLV(BERSequence, vbs)...)
	return buildTLV(p.Command.berTag(), body), nil
}

// parsePDUBody parses a command-tagged PDU SEQUENCE, filling a new PDU.
// Returns the number of bytes consumed from buf.
func parsePDUBody(buf []byte) (*PDU, int, error) {
	tag, body, consumed, err := parseTLV(buf)
	if err != nil {
		return nil, 0, err
	}
	cmd, ok := pduTypeFromBER(tag)
	if !ok {
		return nil, 0, errf(Asn1ParseErr, "unrecognized PDU tag 0x%02x", byte(tag))
	}
	p := NewPDU(cmd)

	reqIDBody, n, err := expectTLV(body, BERInteger)
	if err != nil {
		return nil, 0, err
	}
	p.RequestID = int32(parseInt64(reqIDBody))
	cursor := n

	aBody, n, err := expectTLV(body[cursor:], BERInteger)
	if err != nil {
		return nil, 0, err
	}
	cursor += n
	bBody, n, err := expectTLV(body[cursor:], BERInteger)
	if err != nil {
		return nil, 0, err
	}
	cursor += n
	if cmd == GetBulkRequest {
		p.NonRepeaters = int(parseInt64(aBody))
		p.MaxRepetitions = int(parseInt64(bBody))
	} else {
		p.ErrorStatus = int(parseInt64(aBody))
		p.ErrorIndex = int(parseInt64(bBody))
	}

	vbsBody, n, err := expectTLV(body[cursor:], BERSequence)
	if err != nil {
		return nil, 0, err
	}
	cursor += n
	for len(vbsBody) > 0 {
		vb, c, err := parseVarBind(vbsBody)
		if err != nil {
			return nil, 0, err
		}
		p.VarBinds = append(p.VarBinds, vb)
		vbsBody = vbsBody[c:]
	}
	return p, consumed, nil
}
