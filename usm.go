package gosnmp

// Copyright 2012-2016 The GoSNMP Authors. All rights reserved.  Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

// User-based Security Model, grounded on the USM wire format and its
// authenticate/isAuthentic/negotiateInitialSecurityParameters handshake,
// generalized into the SecurityModel interface so it plugs into the
// registry in security.go instead of being hard-wired into the packet
// builder.

import (
	"sync"
)

// UsmUser is one row of the user table: either a concrete user bound to
// a specific engineID, or a template (EngineID == nil) matched at
// discovery time and localized on first use against the peer's
// engineID, mirroring usmUserTable's "clone from" semantics.
type UsmUser struct {
	EngineID []byte
	Name     string

	AuthProtocol   AuthProtocol
	AuthPassphrase string
	AuthKey        []byte // pre-localized Kul; derived from AuthPassphrase if empty

	PrivProtocol   PrivProtocol
	PrivPassphrase string
	PrivKey        []byte

	// localDESSalt/localAESSalt are privacy salt counters, incremented
	// once per encrypted message sent under this user (RFC 3414 §8.1.1.1,
	// RFC 3826 §3.1.2).
	mu           sync.Mutex
	localDESSalt uint32
	localAESSalt uint64
}

// resolvedKeys returns this user's authKey/privKey, localizing from the
// stored passphrase against engineID if a pre-localized key was not
// already supplied.
func (u *UsmUser) resolvedKeys(engineID []byte) (authKey, privKey []byte, err error) {
	authKey = u.AuthKey
	if authKey == nil && u.AuthProtocol != AuthNone && u.AuthPassphrase != "" {
		authKey, err = DeriveLocalizedKey(u.AuthProtocol, u.AuthPassphrase, engineID)
		if err != nil {
			return nil, nil, err
		}
	}
	privKey = u.PrivKey
	if privKey == nil && u.PrivProtocol != PrivNone && u.PrivPassphrase != "" {
		privKey, err = DeriveLocalizedKey(u.AuthProtocol, u.PrivPassphrase, engineID)
		if err != nil {
			return nil, nil, err
		}
	}
	return authKey, privKey, nil
}

func (u *UsmUser) nextDESSalt() uint32 {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.localDESSalt++
	return u.localDESSalt
}

func (u *UsmUser) nextAESSalt() uint64 {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.localAESSalt++
	return u.localAESSalt
}

// cloneForEngine returns a per-engineID copy of a template user (one
// with EngineID == nil), with keys localized.
func (u *UsmUser) cloneForEngine(engineID []byte) (*UsmUser, error) {
	authKey, privKey, err := u.resolvedKeys(engineID)
	if err != nil {
		return nil, err
	}
	return &UsmUser{
		EngineID:       cloneBytes(engineID),
		Name:           u.Name,
		AuthProtocol:   u.AuthProtocol,
		AuthPassphrase: u.AuthPassphrase,
		AuthKey:        authKey,
		PrivProtocol:   u.PrivProtocol,
		PrivPassphrase: u.PrivPassphrase,
		PrivKey:        privKey,
	}, nil
}

// UsmUserTable holds the configured users, keyed by (engineID, name).
// Template rows (EngineID == nil) are cloned into concrete rows the
// first time a peer's engineID becomes known.
type UsmUserTable struct {
	mu        sync.Mutex
	users     map[string]*UsmUser // key: engineID + "\x00" + name
	templates []*UsmUser
}

// NewUsmUserTable returns an empty table.
func NewUsmUserTable() *UsmUserTable {
	return &UsmUserTable{users: make(map[string]*UsmUser)}
}

func usmKey(engineID []byte, name string) string {
	return string(engineID) + "\x00" + name
}

// AddUser registers a user. A nil EngineID registers a template applied
// to every engine discovered later under that name.
func (t *UsmUserTable) AddUser(u *UsmUser) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if u.EngineID == nil {
		t.templates = append(t.templates, u)
		return
	}
	t.users[usmKey(u.EngineID, u.Name)] = u
}

// Find resolves (engineID, name) to a concrete user, cloning a matching
// template on first use.
func (t *UsmUserTable) Find(engineID []byte, name string) (*UsmUser, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if u, ok := t.users[usmKey(engineID, name)]; ok {
		return u, true
	}
	for _, tmpl := range t.templates {
		if tmpl.Name != name {
			continue
		}
		cloned, err := tmpl.cloneForEngine(engineID)
		if err != nil {
			return nil, false
		}
		t.users[usmKey(engineID, name)] = cloned
		return cloned, true
	}
	return nil, false
}

// usmSecurityModel implements SecurityModel for the User-based Security
// Model (RFC 3414).
type usmSecurityModel struct {
	engine *Engine
	users  *UsmUserTable
}

// NewUSM returns the USM implementation of SecurityModel, registered
// automatically by NewEngine.
func NewUSM(e *Engine) SecurityModel {
	return &usmSecurityModel{engine: e, users: NewUsmUserTable()}
}

func (m *usmSecurityModel) ID() int      { return UserSecurityModelID }
func (m *usmSecurityModel) Name() string { return "usm" }

// Users exposes the user table for callers configuring credentials.
// ApplyConfig does not fill it: no "createUser" directive is read.
func (m *usmSecurityModel) Users() *UsmUserTable { return m.users }

func (m *usmSecurityModel) SessionSetup(in, out *Session) error { return nil }

func (m *usmSecurityModel) SessionOpen(s *Session) error {
	if s.SecurityLevel > LevelNoAuthNoPriv && s.UserName == "" {
		return errf(BadSecName, "security level %s requires a security name", s.SecurityLevel)
	}
	if s.UserName != "" {
		u := &UsmUser{
			Name:           s.UserName,
			AuthProtocol:   s.AuthProtocol,
			AuthPassphrase: s.AuthPassphrase,
			PrivProtocol:   s.PrivProtocol,
			PrivPassphrase: s.PrivPassphrase,
		}
		if len(s.SecurityEngineID) > 0 {
			cloned, err := u.cloneForEngine(s.SecurityEngineID)
			if err != nil {
				return err
			}
			m.users.AddUser(cloned)
		} else {
			m.users.AddUser(u)
		}
	}
	return nil
}

func (m *usmSecurityModel) SessionClose(s *Session) error { return nil }

// ProbeEngineID sends (via the session's normal send path, built by the
// caller) an empty noAuthNoPriv GetRequest with no securityName so the
// peer reports usmStatsUnknownEngineIDs along with its real engineID,
// the RFC 3414 §4 discovery handshake.
func (m *usmSecurityModel) ProbeEngineID(s *Session) error {
	s.SecurityEngineID = nil
	s.SecurityLevel = LevelNoAuthNoPriv
	return nil
}

func (m *usmSecurityModel) PostProbeEngineID(s *Session) error {
	if len(s.SecurityEngineID) == 0 {
		return errf(UsmUnknownEngineId, "engine id discovery did not complete")
	}
	if s.UserName != "" {
		if _, ok := m.users.Find(s.SecurityEngineID, s.UserName); !ok {
			u := &UsmUser{
				Name:           s.UserName,
				AuthProtocol:   s.AuthProtocol,
				AuthPassphrase: s.AuthPassphrase,
				PrivProtocol:   s.PrivProtocol,
				PrivPassphrase: s.PrivPassphrase,
			}
			cloned, err := u.cloneForEngine(s.SecurityEngineID)
			if err != nil {
				return err
			}
			m.users.AddUser(cloned)
		}
	}
	return nil
}

// buildUsmSecurityParamsBody builds the contents of the SEQUENCE {
// engineID, engineBoots, engineTime, userName, authParams, privParams },
// without the SEQUENCE header, and the offset of the authParams value
// within those contents.
func buildUsmSecurityParamsBody(engineID []byte, boots, engTime uint32, userName string, authParams, privParams []byte) ([]byte, int) {
	engineIDTLV := buildTLV(BEROctetString, engineID)
	bootsTLV := buildTLV(BERInteger, marshalInt64(int64(boots)))
	timeTLV := buildTLV(BERInteger, marshalInt64(int64(engTime)))
	nameTLV := buildTLV(BEROctetString, []byte(userName))

	head := append(append(append([]byte{}, engineIDTLV...), bootsTLV...), timeTLV...)
	head = append(head, nameTLV...)

	authTLV := buildTLV(BEROctetString, authParams)
	authParamStart := len(head) + (len(authTLV) - len(authParams))

	privTLV := buildTLV(BEROctetString, privParams)

	body := append(append(head, authTLV...), privTLV...)
	return body, authParamStart
}

func parseUsmSecurityParams(raw []byte) (engineID []byte, boots, engTime uint32, userName string, authParams, privParams []byte, err error) {
	body, _, err := expectTLV(raw, BERSequence)
	if err != nil {
		return nil, 0, 0, "", nil, nil, wrapErr(UsmParse, err, "parsing usmSecurityParameters SEQUENCE")
	}
	engineID, n, err := expectTLV(body, BEROctetString)
	if err != nil {
		return nil, 0, 0, "", nil, nil, err
	}
	body = body[n:]

	bootsBytes, n, err := expectTLV(body, BERInteger)
	if err != nil {
		return nil, 0, 0, "", nil, nil, err
	}
	body = body[n:]
	boots = uint32(parseInt64(bootsBytes))

	timeBytes, n, err := expectTLV(body, BERInteger)
	if err != nil {
		return nil, 0, 0, "", nil, nil, err
	}
	body = body[n:]
	engTime = uint32(parseInt64(timeBytes))

	nameBytes, n, err := expectTLV(body, BEROctetString)
	if err != nil {
		return nil, 0, 0, "", nil, nil, err
	}
	body = body[n:]
	userName = string(nameBytes)

	authParams, n, err = expectTLV(body, BEROctetString)
	if err != nil {
		return nil, 0, 0, "", nil, nil, err
	}
	body = body[n:]

	privParams, _, err = expectTLV(body, BEROctetString)
	if err != nil {
		return nil, 0, 0, "", nil, nil, err
	}
	return engineID, boots, engTime, userName, authParams, privParams, nil
}

// BuildSecurityParameters renders usmSecurityParameters for an outgoing
// message. The auth/priv parameter fields are emitted as zeroed
// placeholders of the correct width; Authenticate patches the real HMAC
// tag in afterward, and privParams (the DES/AES salt) is filled here
// since it does not depend on the rest of the assembled message.
func (m *usmSecurityModel) BuildSecurityParameters(meta *SecurityMeta, flags MsgFlags) ([]byte, int, error) {
	if meta.User == nil && meta.SecurityName != "" {
		if u, ok := m.users.Find(meta.SecurityEngineID, meta.SecurityName); ok {
			meta.User = u
		} else if flags&(MsgFlagAuth|MsgFlagPriv) != 0 {
			return nil, 0, errf(UnknownUserName, "no usm user %q for engine %x", meta.SecurityName, meta.SecurityEngineID)
		}
	}

	var authPlaceholder, privParams []byte
	if flags&MsgFlagAuth != 0 {
		authPlaceholder = make([]byte, 12)
	}

	boots, engTime := m.engine.LocalBoots, m.engine.LocalEngineTime()
	if len(meta.SecurityEngineID) > 0 && !bytesEqual(meta.SecurityEngineID, m.engine.LocalEngineID) {
		if entry, ok := m.engine.LCD.Get(meta.SecurityEngineID); ok {
			boots, engTime = entry.EngineBoots, entry.EstimatedTime()
		} else {
			boots, engTime = 0, 0
		}
	}

	if flags&MsgFlagPriv != 0 && meta.User != nil {
		switch meta.User.PrivProtocol {
		case PrivDES:
			privParams = marshalUvarIntPadded(uint64(meta.User.nextDESSalt()), 4)
		case PrivAES:
			privParams = marshalUvarIntPadded(meta.User.nextAESSalt(), 8)
		}
	}

	body, authParamStart := buildUsmSecurityParamsBody(meta.SecurityEngineID, boots, engTime, meta.SecurityName, authPlaceholder, privParams)
	seq := buildTLV(BERSequence, body)
	return seq, authParamStart + (len(seq) - len(body)), nil
}

// EncryptScopedPDU wraps plaintext (already a complete scopedPDU SEQUENCE
// TLV) as either a plaintext msgData or, under authPriv, an encrypted
// OCTET STRING using the session user's privacy protocol.
func (m *usmSecurityModel) EncryptScopedPDU(meta *SecurityMeta, flags MsgFlags, plaintext []byte) ([]byte, error) {
	if flags&MsgFlagPriv == 0 {
		return plaintext, nil
	}
	if meta.User == nil {
		return nil, errf(UsmUnsupportedLevel, "privacy requested with no resolved user")
	}
	_, privKey, err := meta.User.resolvedKeys(meta.SecurityEngineID)
	if err != nil {
		return nil, err
	}
	if len(privKey) < 16 {
		return nil, errf(UsmUnsupportedLevel, "privacy key too short")
	}

	var ciphertext []byte
	switch meta.User.PrivProtocol {
	case PrivDES:
		salt := meta.User.localDESSalt
		iv := xorSaltIV(privKey[8:16], salt)
		ciphertext, err = desCBCEncrypt(privKey[:8], iv, plaintext)
	case PrivAES:
		iv := aesIV(m.engine.LocalBoots, m.engine.LocalEngineTime(), meta.User.localAESSalt)
		ciphertext, err = aesCFB128(privKey[:16], iv, plaintext, true)
	default:
		return nil, errf(UsmUnsupportedLevel, "unsupported privacy protocol")
	}
	if err != nil {
		return nil, err
	}
	return buildTLV(BEROctetString, ciphertext), nil
}

// Authenticate computes HMAC over fullMessage with authParams zeroed
// (already true, since BuildSecurityParameters emits a zero
// placeholder) and patches the 12-byte tag in place at authParamStart.
func (m *usmSecurityModel) Authenticate(meta *SecurityMeta, fullMessage []byte, authParamStart int) ([]byte, error) {
	if meta.User == nil {
		return nil, errf(UsmUnsupportedLevel, "authentication requested with no resolved user")
	}
	authKey, _, err := meta.User.resolvedKeys(meta.SecurityEngineID)
	if err != nil {
		return nil, err
	}
	if len(authKey) == 0 {
		return nil, errf(UsmUnsupportedLevel, "no authentication key for user %q", meta.User.Name)
	}
	tag, err := hmacTruncated12(meta.User.AuthProtocol, authKey, fullMessage)
	if err != nil {
		return nil, err
	}
	if authParamStart+12 > len(fullMessage) {
		return nil, errf(BadAsn1Build, "authParamStart out of range")
	}
	copy(fullMessage[authParamStart:authParamStart+12], tag)
	return fullMessage, nil
}

// Decode validates and, if required, decrypts an incoming v3 message.
func (m *usmSecurityModel) Decode(in *IncomingMessage) (*DecodedMessage, error) {
	engineID, boots, engTime, userName, authParams, privParams, err := parseUsmSecurityParams(in.SecurityParamsRaw)
	if err != nil {
		m.engine.Stats.Incr(StatUsmStatsUnsupportedSecLevels)
		return nil, err
	}

	level := levelForFlags(in.MsgFlags)

	if len(engineID) == 0 {
		// Discovery probe: report our engineID, no further processing.
		if len(m.engine.LocalEngineID) == 0 {
			return nil, errf(JustAContextProbe, "no local engine id configured to report")
		}
		return &DecodedMessage{
			Report:     m.buildReport(m.engine.LocalEngineID, UnknownEngId, 0),
			ReportKind: UnknownEngId,
		}, nil
	}

	isLocal := bytesEqual(engineID, m.engine.LocalEngineID)

	user, ok := m.users.Find(engineID, userName)
	if !ok {
		m.engine.Stats.Incr(StatUsmStatsUnknownUserNames)
		return &DecodedMessage{
			Report:     m.buildReport(engineID, UnknownUserName, 0),
			ReportKind: UnknownUserName,
		}, nil
	}

	requiredAuth := level >= LevelAuthNoPriv
	requiredPriv := level == LevelAuthPriv
	haveAuth := user.AuthProtocol != AuthNone
	havePriv := user.PrivProtocol != PrivNone
	if (requiredAuth && !haveAuth) || (requiredPriv && !havePriv) {
		m.engine.Stats.Incr(StatUsmStatsUnsupportedSecLevels)
		return &DecodedMessage{
			Report:     m.buildReport(engineID, UnsupportedSecLevel, 0),
			ReportKind: UnsupportedSecLevel,
		}, nil
	}

	authKey, privKey, err := user.resolvedKeys(engineID)
	if err != nil {
		return nil, err
	}

	if requiredAuth {
		whole := append([]byte{}, in.WholeMessage...)
		authStart := findAuthParamOffset(whole, authParams)
		if authStart < 0 {
			m.engine.Stats.Incr(StatUsmStatsWrongDigests)
			return &DecodedMessage{Report: m.buildReport(engineID, AuthenticationFailure, 0), ReportKind: AuthenticationFailure}, nil
		}
		zeroed := make([]byte, 12)
		copy(whole[authStart:authStart+12], zeroed)
		expected, err := hmacTruncated12(user.AuthProtocol, authKey, whole)
		if err != nil {
			return nil, err
		}
		if !constantTimeEqual(expected, authParams) {
			m.engine.Stats.Incr(StatUsmStatsWrongDigests)
			return &DecodedMessage{Report: m.buildReport(engineID, AuthenticationFailure, 0), ReportKind: AuthenticationFailure}, nil
		}
	}

	if requiredAuth {
		var ok bool
		var kind ErrorKind
		if isLocal {
			ok, kind = ValidateAuthoritative(m.engine.LocalBoots, m.engine.LocalEngineTime(), boots, engTime)
		} else {
			ok, kind = m.engine.LCD.ValidateAndUpdate(engineID, boots, engTime)
		}
		if !ok {
			m.engine.Stats.Incr(StatUsmStatsNotInTimeWindows)
			return &DecodedMessage{Report: m.buildReport(engineID, kind, 0), ReportKind: kind}, nil
		}
	}

	plaintext := in.MsgDataBody
	if in.MsgDataTag == BEROctetString {
		if !requiredPriv {
			return nil, errf(DecryptionError, "encrypted scopedPDU but privacy not requested")
		}
		plaintext, err = m.decrypt(user, privKey, boots, engTime, privParams, in.MsgDataBody)
		if err == nil {
			// Hand back the scopedPDU's contents, as the unencrypted path
			// does; this also drops any DES padding after the TLV.
			plaintext, _, err = expectTLV(plaintext, BERSequence)
		}
		if err != nil {
			m.engine.Stats.Incr(StatUsmStatsDecryptionErrors)
			return &DecodedMessage{Report: m.buildReport(engineID, DecryptionError, 0), ReportKind: DecryptionError}, nil
		}
	}

	return &DecodedMessage{
		ScopedPDUPlaintext: plaintext,
		SecurityEngineID:   engineID,
		SecurityName:       userName,
		StateRef:           user,
	}, nil
}

func (m *usmSecurityModel) decrypt(user *UsmUser, privKey []byte, boots, engTime uint32, privParams, ciphertext []byte) ([]byte, error) {
	if len(privKey) < 16 {
		return nil, errf(UsmUnsupportedLevel, "privacy key too short")
	}
	switch user.PrivProtocol {
	case PrivDES:
		if len(privParams) != 4 {
			return nil, errf(DecryptionError, "bad DES privacy parameters length")
		}
		iv := xorSaltBytes(privKey[8:16], privParams)
		return desCBCDecrypt(privKey[:8], iv, ciphertext)
	case PrivAES:
		if len(privParams) != 8 {
			return nil, errf(DecryptionError, "bad AES privacy parameters length")
		}
		iv := aesIVFromParams(boots, engTime, privParams)
		return aesCFB128(privKey[:16], iv, ciphertext, false)
	default:
		return nil, errf(UsmUnsupportedLevel, "unsupported privacy protocol")
	}
}

// buildReport constructs a Report PDU carrying the single usmStats*
// counter varbind named by kind, per RFC 3414 §3.2 discovery steps 3-7.
func (m *usmSecurityModel) buildReport(engineID []byte, kind ErrorKind, requestID int32) *PDU {
	p := NewPDU(Report)
	p.ContextEngineID = engineID
	p.SecurityEngineID = engineID
	p.SecurityModel = UserSecurityModelID
	p.SecurityLevel = LevelNoAuthNoPriv
	if kind == NotInTimeWindow || kind == UsmNotInTimeWindow {
		// RFC 3414 §3.2 step 7: notInTimeWindow is the one report class
		// sent authenticated-but-not-encrypted; every other report kind
		// goes out noAuthNoPriv.
		p.SecurityLevel = LevelAuthNoPriv
	}
	p.RequestID = requestID
	oid := reportOIDForKind(kind)
	counter := reportStatCounterForKind(kind)
	_ = p.Append(oid, TypeCounter32, m.engine.Stats.Get(counter))
	return p
}

// HandleReport inspects an incoming Report PDU and decides whether the
// originating request should be resent (RFC 3414 §3.2's "usmStatsXxx
// counter implies retry with corrected parameters" rule).
func (m *usmSecurityModel) HandleReport(s *Session, kind ErrorKind, pdu *PDU) bool {
	switch kind {
	case UnknownEngId, UsmUnknownEngineId:
		if len(pdu.SecurityEngineID) > 0 {
			s.SecurityEngineID = pdu.SecurityEngineID
		}
		return true
	case NotInTimeWindow, UsmNotInTimeWindow:
		return true
	case UnknownUserName, UsmUnknownUser:
		return false
	default:
		return false
	}
}

func (m *usmSecurityModel) FreePduStateRef(ref SecurityStateRef) {}

func (m *usmSecurityModel) ClonePdu(ref SecurityStateRef) (SecurityStateRef, error) {
	return ref, nil
}

func (m *usmSecurityModel) PDUTimeout(pdu *PDU) int64 { return 0 }

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func marshalUvarIntPadded(v uint64, width int) []byte {
	out := make([]byte, width)
	for i := width - 1; i >= 0; i-- {
		out[i] = byte(v)
		v >>= 8
	}
	return out
}

// xorSaltIV builds a DES IV from the last 8 bytes of the privacy key
// XORed with the local salt counter (RFC 3414 §8.1.1.1).
func xorSaltIV(privKeyTail []byte, salt uint32) []byte {
	saltBytes := marshalUvarIntPadded(uint64(salt), 4)
	return xorSaltBytes(privKeyTail, saltBytes)
}

func xorSaltBytes(privKeyTail, saltBytes []byte) []byte {
	iv := make([]byte, 8)
	copy(iv, privKeyTail)
	for i, b := range saltBytes {
		iv[4+i] ^= b
	}
	return iv
}

// aesIV builds the 16-byte AES-CFB128 IV from boots||time||salt
// (RFC 3826 §3.1.2.1).
func aesIV(boots uint32, engTime uint32, salt uint64) []byte {
	params := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		params[i] = byte(salt)
		salt >>= 8
	}
	return aesIVFromParams(boots, engTime, params)
}

func aesIVFromParams(boots, engTime uint32, salt []byte) []byte {
	iv := make([]byte, 16)
	copy(iv[0:4], marshalUvarIntPadded(uint64(boots), 4))
	copy(iv[4:8], marshalUvarIntPadded(uint64(engTime), 4))
	copy(iv[8:16], salt)
	return iv
}

// findAuthParamOffset locates authParams within whole by byte search,
// used because the message has already been fully assembled by the time
// Decode runs and only the parsed authParams value (not its offset) is
// available.
func findAuthParamOffset(whole, authParams []byte) int {
	if len(authParams) == 0 {
		return -1
	}
	for i := 0; i+len(authParams) <= len(whole); i++ {
		if bytesEqual(whole[i:i+len(authParams)], authParams) {
			return i
		}
	}
	return -1
}
