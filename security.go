package gosnmp

// Copyright 2012-2016 The GoSNMP Authors. All rights reserved.  Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

import (
	"sync"
)

// SecurityMeta carries the per-message fields a SecurityModel needs to
// build or validate security parameters; it is the stable contract
// between the message codec and the pluggable security model,
// so the message codec never reaches into USM internals directly.
type SecurityMeta struct {
	SecurityEngineID []byte
	SecurityName     string
	SecurityLevel    SecurityLevel
	ContextEngineID  []byte
	ContextName      string
	User             *UsmUser
}

// IncomingMessage is everything the security model needs to validate
// and decrypt an inbound v3 message.
type IncomingMessage struct {
	WholeMessage      []byte
	MsgID             int32
	MsgMaxSize        int
	MsgFlags          MsgFlags
	SecurityModel     int
	SecurityParamsRaw []byte
	MsgDataTag        Asn1BER
	MsgDataBody       []byte
	LocalEngineID     []byte
	Reportable        bool
	Engine            *Engine
}

// DecodedMessage is the result of a successful (or report-worthy)
// security decode.
type DecodedMessage struct {
	ScopedPDUPlaintext []byte
	SecurityEngineID   []byte
	SecurityName       string
	StateRef           SecurityStateRef
	Report             *PDU // non-nil: caller should send this Report instead of continuing
	ReportKind         ErrorKind
}

// SecurityModel is the pluggable dispatch table keyed by numeric model
// id. USM (model 3) is the only implementation in this
// core; the registry exists so a second model could be added without
// touching the session or message codec.
type SecurityModel interface {
	ID() int
	Name() string

	SessionSetup(in, out *Session) error
	SessionOpen(s *Session) error
	SessionClose(s *Session) error
	ProbeEngineID(s *Session) error
	PostProbeEngineID(s *Session) error

	// BuildSecurityParameters renders the msgSecurityParameters OCTET
	// STRING body (already TLV-wrapped as a SEQUENCE) and reports the
	// offset of the authentication-parameters value within it, relative
	// to the start of that returned slice, so the caller can compute an
	// absolute offset once the surrounding message is assembled.
	BuildSecurityParameters(meta *SecurityMeta, flags MsgFlags) (secParamsTLV []byte, authParamStart int, err error)

	// EncryptScopedPDU returns the msgData CHOICE bytes: either the
	// plaintext scopedPDU SEQUENCE TLV, or an encrypted OCTET STRING TLV.
	EncryptScopedPDU(meta *SecurityMeta, flags MsgFlags, plaintext []byte) (msgDataTLV []byte, err error)

	// Authenticate computes and patches the 12-byte auth tag into
	// fullMessage at authParamStart, returning the patched message.
	Authenticate(meta *SecurityMeta, fullMessage []byte, authParamStart int) ([]byte, error)

	Decode(in *IncomingMessage) (*DecodedMessage, error)

	// HandleReport performs model-specific recovery for a Report PDU
	// and returns true if the caller should resend the original request.
	HandleReport(s *Session, kind ErrorKind, pdu *PDU) bool

	FreePduStateRef(ref SecurityStateRef)
	ClonePdu(ref SecurityStateRef) (SecurityStateRef, error)
	PDUTimeout(pdu *PDU) int64
}

// SecurityModelRegistry maps numeric security-model ids (and names) to
// implementations. Registration is one-shot; duplicates are rejected.
type SecurityModelRegistry struct {
	mu       sync.Mutex
	byID     map[int]SecurityModel
	nameToID map[string]int
}

// NewSecurityModelRegistry returns an empty registry.
func NewSecurityModelRegistry() *SecurityModelRegistry {
	return &SecurityModelRegistry{
		byID:     make(map[int]SecurityModel),
		nameToID: make(map[string]int),
	}
}

// Register adds a security model, failing if its id is already taken.
func (r *SecurityModelRegistry) Register(m SecurityModel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[m.ID()]; exists {
		return errf(GenErr, "security model id %d already registered", m.ID())
	}
	r.byID[m.ID()] = m
	r.nameToID[m.Name()] = m.ID()
	return nil
}

// Lookup returns the model registered for id, if any.
func (r *SecurityModelRegistry) Lookup(id int) (SecurityModel, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.byID[id]
	return m, ok
}

// ByName resolves a configured security-model name to its numeric id,
// for ConfigStore directives like defSecurityModel.
func (r *SecurityModelRegistry) ByName(name string) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.nameToID[name]
	return id, ok
}

// UserSecurityModelID is the numeric model id assigned to USM by RFC 3411.
const UserSecurityModelID = 3

// RegisterSecurityModelName registers m under both its numeric id and
// its name, mirroring Firmware/Corelib/Secmod.c's register_sec_mod.
func (r *SecurityModelRegistry) RegisterSecurityModelName(m SecurityModel) error {
	return r.Register(m)
}

// SecurityModelByName resolves a configured model name directly to its
// implementation, mirroring Secmod.c's find_sec_mod.
func (r *SecurityModelRegistry) SecurityModelByName(name string) (SecurityModel, bool) {
	id, ok := r.ByName(name)
	if !ok {
		return nil, false
	}
	return r.Lookup(id)
}

func errUnknownSecurityModel(id int) error {
	return errf(UnknownSecModel, "no security model registered for id %d", id)
}
