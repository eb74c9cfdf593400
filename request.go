package gosnmp

// Copyright 2012-2016 The GoSNMP Authors. All rights reserved.  Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

// Outstanding-request bookkeeping: request/response correlation by
// RequestID plus the retry state kept per pdu (requestid, retries,
// timeout, callback).

import "time"

// CallbackOp identifies why a session callback fired.
type CallbackOp int

const (
	OpReceived CallbackOp = iota
	OpTimedOut
	OpConnect
	OpDisconnect
	OpSendFailed
)

func (op CallbackOp) String() string {
	switch op {
	case OpReceived:
		return "RECEIVED"
	case OpTimedOut:
		return "TIMED_OUT"
	case OpConnect:
		return "CONNECT"
	case OpDisconnect:
		return "DISCONNECT"
	case OpSendFailed:
		return "SEND_FAILED"
	default:
		return "UNKNOWN"
	}
}

// SessionCallback is invoked from Receive/CheckTimeouts for every
// asynchronous outcome of a previously Send-ed PDU.
type SessionCallback func(op CallbackOp, s *Session, req, resp *PDU)

// OutstandingRequest tracks one confirmed PDU awaiting a response.
type OutstandingRequest struct {
	RequestID   int32
	MsgID       int32
	PDU         *PDU
	RetriesLeft int
	Timeout     time.Duration
	Deadline    time.Time
	Callback    SessionCallback

	// reportRetried marks that this request has already been resent once
	// in response to a Report PDU, distinct from ordinary timeout
	// retries, so a hostile or misconfigured peer cannot induce an
	// infinite report/resend cycle.
	reportRetried bool

	// sync is non-nil for SendSync callers; Receive/CheckTimeouts send
	// the outcome here instead of (or in addition to) invoking Callback.
	sync chan syncOutcome
}

type syncOutcome struct {
	result Result
	resp   *PDU
	err    error
}
