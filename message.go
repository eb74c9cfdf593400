package gosnmp

// Copyright 2012-2016 The GoSNMP Authors. All rights reserved.  Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

// The v3 message envelope: msgGlobalData / msgSecurityParameters /
// scopedPDU framing, generalized from USM-only framing to dispatch
// through the SecurityModel registry so a second security model could
// plug in without touching this file.

const v3MsgVersion = 3

// msgMaxSize bounds per RFC 3412: an SNMPv3 message's declared maximum
// reply size must fall within [484, 2^31-1]; anything outside that is
// an ASN.1 parse error rather than a usable (if small) buffer size.
const (
	minMsgMaxSize = 484
	maxMsgMaxSize = 1<<31 - 1
)

// MsgFlags is the single-octet msgFlags field of msgGlobalData.
type MsgFlags uint8

const (
	MsgFlagAuth MsgFlags = 1 << iota
	MsgFlagPriv
	MsgFlagReportable
)

// flagsForLevel renders the auth/priv bits for a security level; the
// reportable bit is set by the caller depending on whether a response
// is expected.
func flagsForLevel(level SecurityLevel) MsgFlags {
	switch level {
	case LevelAuthNoPriv:
		return MsgFlagAuth
	case LevelAuthPriv:
		return MsgFlagAuth | MsgFlagPriv
	default:
		return 0
	}
}

func levelForFlags(f MsgFlags) SecurityLevel {
	switch {
	case f&MsgFlagPriv != 0:
		return LevelAuthPriv
	case f&MsgFlagAuth != 0:
		return LevelAuthNoPriv
	default:
		return LevelNoAuthNoPriv
	}
}

// buildScopedPDU renders the scopedPDU SEQUENCE { contextEngineID,
// contextName, data }.
func buildScopedPDU(p *PDU) ([]byte, error) {
	body, err := buildPDUBody(p)
	if err != nil {
		return nil, err
	}
	ctxEngineID := buildTLV(BEROctetString, p.ContextEngineID)
	ctxName := buildTLV(BEROctetString, []byte(p.ContextName))
	value := append(append(append([]byte{}, ctxEngineID...), ctxName...), body...)
	return buildTLV(BERSequence, value), nil
}

func parseScopedPDU(buf []byte) (*PDU, error) {
	ctxEngineID, n1, err := expectTLV(buf, BEROctetString)
	if err != nil {
		return nil, wrapErr(BadParse, err, "parsing scopedPDU contextEngineID")
	}
	rest := buf[n1:]
	ctxName, n2, err := expectTLV(rest, BEROctetString)
	if err != nil {
		return nil, wrapErr(BadParse, err, "parsing scopedPDU contextName")
	}
	rest = rest[n2:]
	pdu, _, err := parsePDUBody(rest)
	if err != nil {
		return nil, err
	}
	pdu.ContextEngineID = cloneBytes(ctxEngineID)
	pdu.ContextName = string(ctxName)
	return pdu, nil
}

// buildGlobalData renders msgGlobalData SEQUENCE { msgID, msgMaxSize,
// msgFlags, msgSecurityModel }.
func buildGlobalData(msgID int32, maxSize int, flags MsgFlags, secModel int) []byte {
	idTLV := buildTLV(BERInteger, marshalInt64(int64(msgID)))
	sizeTLV := buildTLV(BERInteger, marshalInt64(int64(maxSize)))
	flagsTLV := buildTLV(BEROctetString, []byte{byte(flags)})
	modelTLV := buildTLV(BERInteger, marshalInt64(int64(secModel)))
	value := append(append(append(append([]byte{}, idTLV...), sizeTLV...), flagsTLV...), modelTLV...)
	return buildTLV(BERSequence, value)
}

func parseGlobalData(buf []byte) (msgID int32, maxSize int, flags MsgFlags, secModel int, err error) {
	body, _, err := expectTLV(buf, BERSequence)
	if err != nil {
		return 0, 0, 0, 0, wrapErr(BadParse, err, "parsing msgGlobalData")
	}
	idBytes, n, err := expectTLV(body, BERInteger)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	body = body[n:]
	msgID = int32(parseInt64(idBytes))

	sizeBytes, n, err := expectTLV(body, BERInteger)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	body = body[n:]
	maxSize = int(parseInt64(sizeBytes))
	if maxSize < minMsgMaxSize || maxSize > maxMsgMaxSize {
		return 0, 0, 0, 0, errf(Asn1ParseErr, "msgMaxSize %d out of range [%d, %d]", maxSize, minMsgMaxSize, maxMsgMaxSize)
	}

	flagBytes, n, err := expectTLV(body, BEROctetString)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	body = body[n:]
	if len(flagBytes) >= 1 {
		flags = MsgFlags(flagBytes[0])
	}
	if flags&MsgFlagPriv != 0 && flags&MsgFlagAuth == 0 {
		return 0, 0, 0, 0, errf(InvalidMsg, "msgFlags sets privacy without authentication")
	}

	modelBytes, _, err := expectTLV(body, BERInteger)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	secModel = int(parseInt64(modelBytes))
	return msgID, maxSize, flags, secModel, nil
}

// BuildMessage renders a complete v3 message: SEQUENCE { version,
// msgGlobalData, msgSecurityParameters, msgData }, dispatching security
// parameter construction, encryption and authentication to the
// registered SecurityModel. This is the forward-build path: each TLV's
// value is assembled before its tag+length is prefixed.
func BuildMessage(reg *SecurityModelRegistry, p *PDU, msgID int32, maxMsgSize int) ([]byte, error) {
	model, ok := reg.Lookup(p.SecurityModel)
	if !ok {
		return nil, errf(UnknownSecModel, "no security model registered for id %d", p.SecurityModel)
	}
	flags := flagsForLevel(p.SecurityLevel)
	if p.Flags&PDUFlagReportable != 0 {
		flags |= MsgFlagReportable
	}

	meta := &SecurityMeta{
		SecurityEngineID: p.SecurityEngineID,
		SecurityName:     p.SecurityName,
		SecurityLevel:    p.SecurityLevel,
		ContextEngineID:  p.ContextEngineID,
		ContextName:      p.ContextName,
	}

	// BuildSecurityParameters runs first: it resolves (and caches onto
	// meta) the user/key material that EncryptScopedPDU below needs.
	secParamsBody, authParamStart, err := model.BuildSecurityParameters(meta, flags)
	if err != nil {
		return nil, err
	}

	scopedPDU, err := buildScopedPDU(p)
	if err != nil {
		return nil, err
	}
	msgDataTLV, err := model.EncryptScopedPDU(meta, flags, scopedPDU)
	if err != nil {
		return nil, err
	}

	secParamsTLV := buildTLV(BEROctetString, secParamsBody)
	// authParamStart is relative to secParamsBody; translate to an offset
	// within secParamsTLV by adding back its own tag+length header.
	secParamsHeaderLen := len(secParamsTLV) - len(secParamsBody)

	versionTLV := buildTLV(BERInteger, marshalInt64(v3MsgVersion))
	globalDataTLV := buildGlobalData(msgID, maxMsgSize, flags, p.SecurityModel)

	head := append(append([]byte{}, versionTLV...), globalDataTLV...)
	secParamsOffsetInMessage := len(head) + secParamsHeaderLen
	full := append(append(head, secParamsTLV...), msgDataTLV...)
	message := buildTLV(BERSequence, full)

	// The SEQUENCE wrapper for the whole message prefixes a tag+length
	// header of its own; absolute offsets shift by that amount.
	outerHeaderLen := len(message) - len(full)
	absoluteAuthStart := outerHeaderLen + secParamsOffsetInMessage + authParamStart

	if flags&MsgFlagAuth != 0 {
		message, err = model.Authenticate(meta, message, absoluteAuthStart)
		if err != nil {
			return nil, err
		}
	}
	return message, nil
}

// BuildMessageReverse renders the same message as BuildMessage, but
// assembles the outer envelope tail-to-head with a reverseBuffer
// instead of forward-building byte slices and concatenating them; the
// shared tag/length helpers (buildTLV's marshalLength, WrapTLV) make
// the two codecs produce byte-identical output for the same PDU.
// Selected via the Session.ReverseEncodeBER / "reverseEncodeBER"
// ConfigStore directive.
func BuildMessageReverse(reg *SecurityModelRegistry, p *PDU, msgID int32, maxMsgSize int) ([]byte, error) {
	model, ok := reg.Lookup(p.SecurityModel)
	if !ok {
		return nil, errf(UnknownSecModel, "no security model registered for id %d", p.SecurityModel)
	}
	flags := flagsForLevel(p.SecurityLevel)
	if p.Flags&PDUFlagReportable != 0 {
		flags |= MsgFlagReportable
	}

	meta := &SecurityMeta{
		SecurityEngineID: p.SecurityEngineID,
		SecurityName:     p.SecurityName,
		SecurityLevel:    p.SecurityLevel,
		ContextEngineID:  p.ContextEngineID,
		ContextName:      p.ContextName,
	}

	secParamsBody, authParamStart, err := model.BuildSecurityParameters(meta, flags)
	if err != nil {
		return nil, err
	}

	scopedPDU, err := buildScopedPDU(p)
	if err != nil {
		return nil, err
	}
	msgDataTLV, err := model.EncryptScopedPDU(meta, flags, scopedPDU)
	if err != nil {
		return nil, err
	}

	secParamsTLV := buildTLV(BEROctetString, secParamsBody)
	secParamsHeaderLen := len(secParamsTLV) - len(secParamsBody)

	versionTLV := buildTLV(BERInteger, marshalInt64(v3MsgVersion))
	globalDataTLV := buildGlobalData(msgID, maxMsgSize, flags, p.SecurityModel)

	rb := newReverseBuffer()
	rb.PrependTLVBytes(msgDataTLV)
	rb.PrependTLVBytes(secParamsTLV)
	rb.PrependTLVBytes(globalDataTLV)
	rb.PrependTLVBytes(versionTLV)
	innerLen := rb.Len()
	rb.WrapTLV(BERSequence, innerLen)

	message := append([]byte{}, rb.Bytes()...)

	head := append(append([]byte{}, versionTLV...), globalDataTLV...)
	secParamsOffsetInMessage := len(head) + secParamsHeaderLen
	outerHeaderLen := len(message) - innerLen
	absoluteAuthStart := outerHeaderLen + secParamsOffsetInMessage + authParamStart

	if flags&MsgFlagAuth != 0 {
		message, err = model.Authenticate(meta, message, absoluteAuthStart)
		if err != nil {
			return nil, err
		}
	}
	return message, nil
}

// ParseMessage splits the outer v3 envelope, leaving security
// validation and scopedPDU decryption to the SecurityModel named by
// msgSecurityModel.
func ParseMessage(raw []byte, e *Engine) (*IncomingMessage, error) {
	body, _, err := expectTLV(raw, BERSequence)
	if err != nil {
		return nil, wrapErr(BadParse, err, "parsing message SEQUENCE")
	}
	versionBytes, n, err := expectTLV(body, BERInteger)
	if err != nil {
		return nil, err
	}
	body = body[n:]
	version := parseInt64(versionBytes)
	if version != v3MsgVersion {
		return nil, errf(BadVersion, "unsupported message version %d", version)
	}

	globalBytes, n, _, err := peekTLVBytes(body)
	if err != nil {
		return nil, err
	}
	msgID, maxSize, flags, secModel, err := parseGlobalData(globalBytes)
	if err != nil {
		return nil, err
	}
	body = body[n:]

	secParamsRaw, n, err := expectTLV(body, BEROctetString)
	if err != nil {
		return nil, wrapErr(BadParse, err, "parsing msgSecurityParameters")
	}
	body = body[n:]

	dataTag, dataBody, _, err := parseTLV(body)
	if err != nil {
		return nil, wrapErr(BadParse, err, "parsing msgData")
	}

	return &IncomingMessage{
		WholeMessage:      raw,
		MsgID:             msgID,
		MsgMaxSize:        maxSize,
		MsgFlags:          flags,
		SecurityModel:     secModel,
		SecurityParamsRaw: secParamsRaw,
		MsgDataTag:        dataTag,
		MsgDataBody:       dataBody,
		LocalEngineID:     e.LocalEngineID,
		Reportable:        flags&MsgFlagReportable != 0,
		Engine:            e,
	}, nil
}

// peekTLVBytes returns the full TLV (header+value) for the next element
// of buf along with its consumed length, used when a sub-parser (here,
// parseGlobalData) wants the whole SEQUENCE including its own header.
func peekTLVBytes(buf []byte) (whole []byte, consumed int, headerLen int, err error) {
	_, value, total, err := parseTLV(buf)
	if err != nil {
		return nil, 0, 0, err
	}
	return buf[:total], total, total - len(value), nil
}
