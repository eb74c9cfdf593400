package gosnmp

// Copyright 2012-2016 The GoSNMP Authors. All rights reserved.  Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

import "net"

// PDUType is the command tag of a PDU.
type PDUType int

const (
	GetRequest PDUType = iota
	GetNextRequest
	GetBulkRequest
	SetRequest
	GetResponse
	Trap2
	InformRequest
	Report
)

func (t PDUType) String() string {
	switch t {
	case GetRequest:
		return "GetRequest"
	case GetNextRequest:
		return "GetNextRequest"
	case GetBulkRequest:
		return "GetBulkRequest"
	case SetRequest:
		return "SetRequest"
	case GetResponse:
		return "GetResponse"
	case Trap2:
		return "SNMPv2-Trap"
	case InformRequest:
		return "InformRequest"
	case Report:
		return "Report"
	default:
		return "PDUType(?)"
	}
}

// berTag returns the wire tag for the PDU's command.
func (t PDUType) berTag() Asn1BER {
	switch t {
	case GetRequest:
		return BERGetRequest
	case GetNextRequest:
		return BERGetNextRequest
	case GetBulkRequest:
		return BERGetBulkRequest
	case SetRequest:
		return BERSetRequest
	case GetResponse:
		return BERGetResponse
	case Trap2:
		return BERSNMPv2Trap
	case InformRequest:
		return BERInformRequest
	case Report:
		return BERReport
	default:
		return BERUnknown
	}
}

func pduTypeFromBER(tag Asn1BER) (PDUType, bool) {
	switch tag {
	case BERGetRequest:
		return GetRequest, true
	case BERGetNextRequest:
		return GetNextRequest, true
	case BERGetBulkRequest:
		return GetBulkRequest, true
	case BERSetRequest:
		return SetRequest, true
	case BERGetResponse:
		return GetResponse, true
	case BERSNMPv2Trap:
		return Trap2, true
	case BERInformRequest:
		return InformRequest, true
	case BERReport:
		return Report, true
	default:
		return 0, false
	}
}

// expectsResponse reports whether sending this command should allocate
// an OutstandingRequest.
func (t PDUType) expectsResponse() bool {
	switch t {
	case GetRequest, GetNextRequest, GetBulkRequest, SetRequest, InformRequest:
		return true
	default:
		return false
	}
}

// confirmed reports whether the command must request a Report on
// security failure.
func (t PDUType) confirmed() bool {
	return t.expectsResponse()
}

// SecurityLevel orders noAuth < authNoPriv < authPriv, the ordering a
// Session's configured minimum level is checked against.
type SecurityLevel uint8

const (
	LevelNoAuthNoPriv SecurityLevel = iota
	LevelAuthNoPriv
	LevelAuthPriv
)

func (l SecurityLevel) String() string {
	switch l {
	case LevelNoAuthNoPriv:
		return "noAuthNoPriv"
	case LevelAuthNoPriv:
		return "authNoPriv"
	case LevelAuthPriv:
		return "authPriv"
	default:
		return "SecurityLevel(?)"
	}
}

// PDUFlags are engine-internal bookkeeping bits, distinct from the
// on-the-wire msgFlags octet (see MsgFlags in message.go).
type PDUFlags uint8

const (
	PDUFlagReportable PDUFlags = 1 << iota
	PDUFlagTunneled
	PDUFlagResponsePDU
	PDUFlagExpectResponse
)

// SecurityStateRef is opaque to the core; only the security model that
// created it knows how to clone or free it.
type SecurityStateRef interface{}

// PDU is the in-memory representation of one protocol data unit plus
// its v3 envelope fields. The PDU exclusively owns its VarBinds, its
// opaque buffers, and its SecurityStateRef.
type PDU struct {
	Command PDUType
	Version uint8 // always 3; v1/v2c dispatch is out of scope for this core

	RequestID int32
	MsgID     int32

	ErrorStatus int
	ErrorIndex  int

	NonRepeaters   int
	MaxRepetitions int

	ContextEngineID []byte
	ContextName     string

	SecurityEngineID []byte
	SecurityName     string
	SecurityModel    int
	SecurityLevel    SecurityLevel

	Flags PDUFlags

	TransportAddress net.Addr
	SecurityStateRef SecurityStateRef

	Timeout int64 // microseconds; 0 means "use session default"
	Retries int   // -1 means "use session default"

	VarBinds []*VarBind
}

// NewPDU allocates a PDU for the given command, defaulting to v3.
func NewPDU(command PDUType) *PDU {
	return &PDU{
		Command: command,
		Version: 3,
		Retries: -1,
	}
}

// Append adds a VarBind by name and typed value, coercing v the same
// way VarBind.SetValue does.
func (p *PDU) Append(name OID, t ValueType, v interface{}) error {
	vb, err := NewVarBind(name, t, v)
	if err != nil {
		return err
	}
	p.VarBinds = append(p.VarBinds, vb)
	return nil
}

// AppendVarBind appends an already-built VarBind, taking ownership of it.
func (p *PDU) AppendVarBind(vb *VarBind) {
	p.VarBinds = append(p.VarBinds, vb)
}

// Count returns the number of variable bindings.
func (p *PDU) Count() int { return len(p.VarBinds) }

// FindByPrefix returns the first VarBind whose name has the given OID
// prefix, or nil.
func (p *PDU) FindByPrefix(prefix OID) *VarBind {
	for _, vb := range p.VarBinds {
		if vb.Name.HasPrefix(prefix) {
			return vb
		}
	}
	return nil
}

// Clone performs a deep copy, including transport bytes and the
// security-state-ref (cloned via the security-model registry).
// It never shares mutable buffers with the original.
func (p *PDU) Clone(reg *SecurityModelRegistry) (*PDU, error) {
	c := *p
	c.ContextEngineID = cloneBytes(p.ContextEngineID)
	c.SecurityEngineID = cloneBytes(p.SecurityEngineID)
	c.VarBinds = make([]*VarBind, len(p.VarBinds))
	for i, vb := range p.VarBinds {
		nv := *vb
		nv.Name = vb.Name.Clone()
		nv.Value = cloneValue(vb.Value)
		c.VarBinds[i] = &nv
	}
	if p.SecurityStateRef != nil && reg != nil {
		model, ok := reg.Lookup(p.SecurityModel)
		if ok {
			ref, err := model.ClonePdu(p.SecurityStateRef)
			if err != nil {
				return nil, err
			}
			c.SecurityStateRef = ref
		}
	}
	return &c, nil
}

// Split returns a new PDU containing m variable bindings starting after
// skipping the first skip.
func (p *PDU) Split(skip, m int) *PDU {
	c := *p
	c.VarBinds = nil
	if skip >= len(p.VarBinds) {
		return &c
	}
	end := skip + m
	if end > len(p.VarBinds) {
		end = len(p.VarBinds)
	}
	for _, vb := range p.VarBinds[skip:end] {
		nv := *vb
		nv.Name = vb.Name.Clone()
		nv.Value = cloneValue(vb.Value)
		c.VarBinds = append(c.VarBinds, &nv)
	}
	return &c
}

// Fix clones the PDU but drops the VarBind at errorIndex (1-based, per
// RFC 3416), used when retrying after a partial errorStatus/errorIndex
// failure.
func (p *PDU) Fix(reg *SecurityModelRegistry) (*PDU, error) {
	c, err := p.Clone(reg)
	if err != nil {
		return nil, err
	}
	idx := p.ErrorIndex - 1
	if idx < 0 || idx >= len(c.VarBinds) {
		return c, nil
	}
	c.VarBinds = append(c.VarBinds[:idx], c.VarBinds[idx+1:]...)
	c.ErrorStatus, c.ErrorIndex = 0, 0
	return c, nil
}

// Free releases the PDU's SecurityStateRef via the owning security
// model's hook. The PDU's Go-managed memory (VarBinds, byte slices) is
// left to the garbage collector; only the opaque ref needs an explicit
// free hook.
func (p *PDU) Free(reg *SecurityModelRegistry) {
	if p.SecurityStateRef == nil || reg == nil {
		return
	}
	if model, ok := reg.Lookup(p.SecurityModel); ok {
		model.FreePduStateRef(p.SecurityStateRef)
	}
	p.SecurityStateRef = nil
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	c := make([]byte, len(b))
	copy(c, b)
	return c
}

func cloneValue(v interface{}) interface{} {
	switch val := v.(type) {
	case []byte:
		return cloneBytes(val)
	case OID:
		return val.Clone()
	default:
		return val
	}
}
