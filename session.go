package gosnmp

// Copyright 2012-2016 The GoSNMP Authors. All rights reserved.  Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

// Session is the per-peer handle: transport binding, security
// defaults, and outstanding-request bookkeeping, including the
// engine-id discovery handshake, generalized to support multiple
// concurrent sessions hanging off one Engine.

import (
	"encoding/hex"
	"net"
	"strconv"
	"sync"
	"time"
)

const (
	defaultTimeout = time.Second
	defaultRetries = 3
	defaultMaxSize = 65507
)

// Session is one configured peer relationship: transport, security
// parameters, and in-flight request state. A Session is safe for
// concurrent use.
type Session struct {
	Engine    *Engine
	Transport Transport
	Reactor   FdReactor

	Version       uint8
	SecurityModel int
	SecurityLevel SecurityLevel

	UserName         string
	AuthProtocol     AuthProtocol
	AuthPassphrase   string
	PrivProtocol     PrivProtocol
	PrivPassphrase   string
	SecurityEngineID []byte

	ContextEngineID []byte
	ContextName     string

	DefaultTimeout time.Duration
	DefaultRetries int
	MaxMsgSize     int

	// DefaultPort is appended by Dial when a target address carries no
	// port of its own ("defaultPort" ConfigStore directive).
	DefaultPort int
	// ClientAddr is the local address Dial binds the UDP socket to, or
	// "" for the OS default ("clientaddr" directive).
	ClientAddr string
	// SendBufferSize/RecvBufferSize, if nonzero, set the UDP socket's
	// SO_SNDBUF/SO_RCVBUF after Dial ("sendBufferSize"/"recvBufferSize").
	SendBufferSize int
	RecvBufferSize int
	// ReverseEncodeBER selects the tail-to-head BER codec for outgoing
	// messages instead of the default forward-build codec; both produce
	// identical wire bytes ("reverseEncodeBER" directive).
	ReverseEncodeBER bool
	// NoContextEngineIDDiscovery, when set with SecurityEngineID empty,
	// makes OpenSession fail instead of probing
	// ("noContextEngineIDDiscovery" directive). OpenSession builds the
	// Session itself with this field false and SecurityEngineID empty,
	// so setting it afterwards (e.g. through ApplyConfig) does not
	// affect discovery.
	NoContextEngineIDDiscovery bool

	Callback SessionCallback

	mu          sync.Mutex
	outstanding map[int32]*OutstandingRequest
	closed      bool
	listening   bool
}

// OpenSession binds a Session to e and transport, performing engine-id
// discovery if needed. The zero value for most fields is a usable
// noAuthNoPriv default.
func OpenSession(e *Engine, transport Transport) (*Session, error) {
	if e == nil {
		e = DefaultEngine()
	}
	s := &Session{
		Engine:         e,
		Transport:      transport,
		Version:        3,
		SecurityModel:  UserSecurityModelID,
		DefaultTimeout: defaultTimeout,
		DefaultRetries: defaultRetries,
		MaxMsgSize:     defaultMaxSize,
		outstanding:    make(map[int32]*OutstandingRequest),
	}
	if transport != nil && transport.MsgMaxSize() > 0 && transport.MsgMaxSize() < s.MaxMsgSize {
		s.MaxMsgSize = transport.MsgMaxSize()
	}

	model, ok := e.SecurityModels.Lookup(s.SecurityModel)
	if !ok {
		return nil, errUnknownSecurityModel(s.SecurityModel)
	}
	if err := model.SessionOpen(s); err != nil {
		return nil, err
	}

	if len(s.SecurityEngineID) == 0 && s.SecurityModel == UserSecurityModelID {
		if s.NoContextEngineIDDiscovery {
			return nil, errf(UsmUnknownEngineId, "engine id discovery disabled and no SecurityEngineID configured")
		}
		if err := s.discover(model); err != nil {
			return nil, err
		}
	}

	e.addSession(s)
	e.log().Debugf("session opened on engine %s", e.InstanceID)
	return s, nil
}

// discover runs the RFC 3414 §4 engine-id discovery round trip
// synchronously: send an empty noAuthNoPriv probe, wait for the report
// carrying the peer's real engineID.
func (s *Session) discover(model SecurityModel) error {
	if err := model.ProbeEngineID(s); err != nil {
		return err
	}
	probe := NewPDU(GetRequest)
	probe.SecurityModel = s.SecurityModel
	probe.SecurityLevel = LevelNoAuthNoPriv
	probe.ContextName = s.ContextName

	_, err := s.SendSync(probe, s.DefaultTimeout)
	// A successful discovery round trip normally surfaces as a Report
	// (JustAContextProbe/UnknownEngId), not a GetResponse; either outcome
	// that populated SecurityEngineID counts as success.
	if len(s.SecurityEngineID) == 0 {
		if err == nil {
			err = errf(UsmUnknownEngineId, "engine id discovery produced no engineID")
		}
		return err
	}
	return model.PostProbeEngineID(s)
}

// Close releases the session's resources and deregisters it from Engine.
func (s *Session) Close() error {
	s.mu.Lock()
	s.closed = true
	pending := s.outstanding
	s.outstanding = nil
	s.mu.Unlock()

	for _, req := range pending {
		s.notify(req, OpTimedOut, req.PDU, nil)
	}

	if model, ok := s.Engine.SecurityModels.Lookup(s.SecurityModel); ok {
		_ = model.SessionClose(s)
	}
	s.Engine.removeSession(s)
	if s.Transport != nil {
		return s.Transport.Close()
	}
	return nil
}

// Send transmits p asynchronously, minting msgID/requestID, and
// registers an OutstandingRequest if the command expects a response.
func (s *Session) Send(p *PDU) error {
	_, err := s.send(p, nil)
	return err
}

// SendSync transmits p and blocks until a response, a Report-driven
// terminal failure, or timeout.
func (s *Session) SendSync(p *PDU, timeout time.Duration) (*PDU, error) {
	if timeout <= 0 {
		timeout = s.DefaultTimeout
	}
	ch := make(chan syncOutcome, 1)
	req, err := s.send(p, ch)
	if err != nil {
		return nil, err
	}
	if req == nil {
		// Unconfirmed PDU (e.g. a trap): nothing to wait for.
		return nil, nil
	}
	select {
	case outcome := <-ch:
		if outcome.err != nil {
			return outcome.resp, outcome.err
		}
		if outcome.result == ResultTimeout {
			return nil, KindError(Timeout)
		}
		return outcome.resp, nil
	case <-time.After(timeout + s.totalRetryBudget(req)):
		s.mu.Lock()
		delete(s.outstanding, req.RequestID)
		s.mu.Unlock()
		return nil, KindError(Timeout)
	}
}

func (s *Session) totalRetryBudget(req *OutstandingRequest) time.Duration {
	return req.Timeout * time.Duration(req.RetriesLeft+1)
}

func (s *Session) send(p *PDU, sync chan syncOutcome) (*OutstandingRequest, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, errf(BadSession, "session is closed")
	}
	s.mu.Unlock()

	if p.SecurityModel == 0 {
		p.SecurityModel = s.SecurityModel
	}
	if p.SecurityLevel == 0 {
		p.SecurityLevel = s.SecurityLevel
	}
	if len(p.SecurityEngineID) == 0 {
		p.SecurityEngineID = s.SecurityEngineID
	}
	if p.SecurityName == "" {
		p.SecurityName = s.UserName
	}
	if len(p.ContextEngineID) == 0 {
		p.ContextEngineID = s.ContextEngineID
	}
	if p.ContextName == "" {
		p.ContextName = s.ContextName
	}
	if p.RequestID == 0 {
		p.RequestID = s.Engine.mintID()
	}
	p.MsgID = s.Engine.mintID()
	if p.Command.confirmed() {
		p.Flags |= PDUFlagReportable
	}

	retries := p.Retries
	if retries < 0 {
		retries = s.DefaultRetries
	}
	timeout := time.Duration(p.Timeout) * time.Microsecond
	if timeout <= 0 {
		timeout = s.DefaultTimeout
	}

	raw, err := s.buildMessage(p)
	if err != nil {
		return nil, err
	}
	if s.Engine.dumpPacket {
		s.Engine.log().Debugf("dump: out msgID=%d %d bytes: %s", p.MsgID, len(raw), hex.EncodeToString(raw))
	}

	var req *OutstandingRequest
	if p.Command.expectsResponse() {
		req = &OutstandingRequest{
			RequestID:   p.RequestID,
			MsgID:       p.MsgID,
			PDU:         p,
			RetriesLeft: retries,
			Timeout:     timeout,
			Deadline:    time.Now().Add(timeout),
			Callback:    s.Callback,
			sync:        sync,
		}
		s.mu.Lock()
		s.outstanding[p.RequestID] = req
		s.mu.Unlock()
	}

	if err := s.Transport.Send(raw); err != nil {
		s.mu.Lock()
		delete(s.outstanding, p.RequestID)
		s.mu.Unlock()
		s.Engine.Stats.Incr(StatSnmpOutGenErrs)
		return nil, wrapErr(BadSendto, err, "sending message")
	}
	s.Engine.Stats.Incr(StatSnmpOutPkts)
	return req, nil
}

// Receive reads and dispatches exactly one frame from the transport,
// non-blocking; returns (false, nil) if nothing was ready.
func (s *Session) Receive() (bool, error) {
	buf, addr, err := s.Transport.Recv()
	if err != nil {
		return false, err
	}
	if buf == nil {
		return false, nil
	}
	s.Engine.Stats.Incr(StatSnmpInPkts)
	if s.Engine.dumpPacket {
		s.Engine.log().Debugf("dump: in %d bytes from %s: %s", len(buf), addr, hex.EncodeToString(buf))
	}

	in, err := ParseMessage(buf, s.Engine)
	if err != nil {
		if kind, ok := errorKind(err); ok && kind == InvalidMsg {
			s.Engine.Stats.Incr(StatSnmpInvalidMsgs)
		} else {
			s.Engine.Stats.Incr(StatSnmpInASNParseErrs)
		}
		return true, err
	}

	model, ok := s.Engine.SecurityModels.Lookup(in.SecurityModel)
	if !ok {
		s.Engine.Stats.Incr(StatSnmpUnknownSecurityModels)
		return true, errUnknownSecurityModel(in.SecurityModel)
	}

	decoded, err := model.Decode(in)
	if err != nil {
		return true, err
	}

	if decoded.Report != nil {
		s.handleReportDecode(model, decoded, addr)
		return true, nil
	}

	pdu, _, err := parseScopedPDUOrPlain(decoded.ScopedPDUPlaintext)
	if err != nil {
		return true, err
	}
	pdu.SecurityEngineID = decoded.SecurityEngineID
	pdu.SecurityName = decoded.SecurityName
	pdu.SecurityStateRef = decoded.StateRef
	pdu.TransportAddress = addr
	pdu.SecurityModel = in.SecurityModel
	pdu.SecurityLevel = levelForFlags(in.MsgFlags)

	if pdu.Command == Report {
		s.handleIncomingReportPDU(model, pdu)
		return true, nil
	}

	s.dispatch(pdu)
	return true, nil
}

// buildMessage renders p as a wire message using whichever BER codec
// s.ReverseEncodeBER selects; both produce identical bytes.
func (s *Session) buildMessage(p *PDU) ([]byte, error) {
	if s.ReverseEncodeBER {
		return BuildMessageReverse(s.Engine.SecurityModels, p, p.MsgID, s.MaxMsgSize)
	}
	return BuildMessage(s.Engine.SecurityModels, p, p.MsgID, s.MaxMsgSize)
}

// Dial opens s.Transport as a UDP socket to addr, honoring DefaultPort
// (appended when addr has no port of its own), ClientAddr (the local
// bind address) and SendBufferSize/RecvBufferSize.
func (s *Session) Dial(addr string) error {
	if s.DefaultPort != 0 {
		if _, _, err := net.SplitHostPort(addr); err != nil {
			addr = net.JoinHostPort(addr, strconv.Itoa(s.DefaultPort))
		}
	}
	t, err := DialUDPTransportFrom(addr, s.ClientAddr)
	if err != nil {
		return err
	}
	if s.SendBufferSize > 0 || s.RecvBufferSize > 0 {
		if err := t.SetBufferSizes(s.SendBufferSize, s.RecvBufferSize); err != nil {
			return err
		}
	}
	s.Transport = t
	return nil
}

func parseScopedPDUOrPlain(buf []byte) (*PDU, int, error) {
	pdu, err := parseScopedPDU(buf)
	return pdu, len(buf), err
}

// handleReportDecode handles a Report synthesized locally by Decode
// itself (e.g. a discovery-probe or unknown-user response we must send
// back to a peer acting as manager). This core only acts as manager, so
// such reports are logged and dropped rather than transmitted.
func (s *Session) handleReportDecode(model SecurityModel, decoded *DecodedMessage, addr interface{}) {
	s.Engine.log().Warnf("dropping locally-generated report for kind %s: this core does not answer as an agent", decoded.ReportKind)
}

// handleIncomingReportPDU processes a genuine Report PDU received from
// a peer, matching it to the OutstandingRequest by RequestID and asking
// the security model whether to resend.
func (s *Session) handleIncomingReportPDU(model SecurityModel, pdu *PDU) {
	s.mu.Lock()
	req, ok := s.outstanding[pdu.RequestID]
	s.mu.Unlock()
	if !ok {
		return
	}

	kind := GenErr
	if vb := pdu.FindByPrefix(nil); vb != nil {
		// Report varbinds are usmStats*.0 scalars; the OID alone tells us
		// which counter fired.
		kind = kindForReportOID(vb.Name)
	}

	if req.reportRetried {
		s.finish(req, nil, errf(kind, "report retry limit exceeded"))
		return
	}

	if model.HandleReport(s, kind, pdu) {
		req.reportRetried = true
		if len(req.PDU.SecurityEngineID) == 0 {
			req.PDU.SecurityEngineID = s.SecurityEngineID
		}
		s.resend(req, time.Now())
		return
	}
	s.finish(req, nil, errf(kind, "request rejected by report"))
}

func kindForReportOID(oid OID) ErrorKind {
	for kind, candidate := range usmReportOIDs {
		if candidate.Equal(oid) {
			return kind
		}
	}
	return GenErr
}

// dispatch matches an ordinary response PDU to its OutstandingRequest.
func (s *Session) dispatch(pdu *PDU) {
	s.mu.Lock()
	req, ok := s.outstanding[pdu.RequestID]
	if ok {
		delete(s.outstanding, pdu.RequestID)
	}
	s.mu.Unlock()
	if !ok {
		s.Engine.Stats.Incr(StatSnmpSilentDrops)
		s.Engine.Stats.Incr(StatSnmpUnknownPDUHandlers)
		return
	}
	if !securityIdentityMatches(req.PDU, pdu) {
		s.Engine.Stats.Incr(StatSnmpSilentDrops)
		return
	}
	s.notify(req, OpReceived, req.PDU, pdu)
}

// securityIdentityMatches guards against a response whose RequestID
// collides with an outstanding request but whose security identity
// doesn't: a response is only a legitimate answer to sent if it was
// secured the same way the request was sent, under the same context.
func securityIdentityMatches(sent, got *PDU) bool {
	return sent.SecurityModel == got.SecurityModel &&
		sent.SecurityLevel == got.SecurityLevel &&
		sent.SecurityName == got.SecurityName &&
		bytesEqual(sent.ContextEngineID, got.ContextEngineID) &&
		sent.ContextName == got.ContextName
}

func (s *Session) notify(req *OutstandingRequest, op CallbackOp, request, response *PDU) {
	if req.sync != nil {
		result := ResultSuccess
		var err error
		switch op {
		case OpTimedOut:
			result, err = ResultTimeout, KindError(Timeout)
		case OpDisconnect, OpSendFailed:
			result, err = ResultError, KindError(Abort)
		}
		req.sync <- syncOutcome{result: result, resp: response, err: err}
	}
	if req.Callback != nil {
		req.Callback(op, s, request, response)
	}
}

func (s *Session) finish(req *OutstandingRequest, resp *PDU, err error) {
	op := OpReceived
	if err != nil {
		op = OpSendFailed
	}
	if req.sync != nil {
		result := ResultSuccess
		if err != nil {
			result = ResultError
		}
		req.sync <- syncOutcome{result: result, resp: resp, err: err}
		return
	}
	if req.Callback != nil {
		req.Callback(op, s, req.PDU, resp)
	}
}

// CheckTimeouts scans outstanding requests, resending (with a fresh
// msgID, decrementing retries) or failing permanently those past their
// deadline. Call this from the reactor loop on every wakeup, not just
// on read-ready events.
func (s *Session) CheckTimeouts(now time.Time) {
	var toRetry, expired []*OutstandingRequest
	s.mu.Lock()
	for id, req := range s.outstanding {
		if now.Before(req.Deadline) {
			continue
		}
		if req.RetriesLeft > 0 {
			req.RetriesLeft--
			toRetry = append(toRetry, req)
			continue
		}
		expired = append(expired, req)
		delete(s.outstanding, id)
	}
	s.mu.Unlock()

	for _, req := range toRetry {
		s.resend(req, now)
	}
	for _, req := range expired {
		s.Engine.Stats.Incr(StatSnmpOutGenErrs)
		s.notify(req, OpTimedOut, req.PDU, nil)
	}
}

// resend re-encodes req.PDU with a fresh msgID and transmits it again,
// keeping the same RequestID/outstanding entry.
func (s *Session) resend(req *OutstandingRequest, now time.Time) {
	req.MsgID = s.Engine.mintID()
	req.PDU.MsgID = req.MsgID
	req.Deadline = now.Add(req.Timeout)

	raw, err := s.buildMessage(req.PDU)
	if err != nil {
		s.mu.Lock()
		delete(s.outstanding, req.RequestID)
		s.mu.Unlock()
		s.finish(req, nil, err)
		return
	}
	if err := s.Transport.Send(raw); err != nil {
		s.mu.Lock()
		delete(s.outstanding, req.RequestID)
		s.mu.Unlock()
		s.notify(req, OpSendFailed, req.PDU, nil)
		return
	}
	s.Engine.Stats.Incr(StatSnmpOutPkts)
}

// NextDeadline returns the earliest outstanding deadline, for a reactor
// computing its next select/poll timeout; ok is false if there is nothing outstanding.
func (s *Session) NextDeadline() (deadline time.Time, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, req := range s.outstanding {
		if !ok || req.Deadline.Before(deadline) {
			deadline, ok = req.Deadline, true
		}
	}
	return deadline, ok
}
