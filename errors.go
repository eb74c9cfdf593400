package gosnmp

// Copyright 2012-2016 The GoSNMP Authors. All rights reserved.  Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind is the closed taxonomy of failures the engine can report, a
// fixed enum rather than a free-form error string, so callers can
// switch on failure class without parsing text.
type ErrorKind int

// The full taxonomy. Not every kind is reachable from every operation;
// see the comment on the function that can return it.
const (
	Success ErrorKind = iota
	GenErr
	BadAddress
	BadSession
	TooLong
	BadVersion
	BadContext
	BadCommunity
	BadSecName
	BadSecLevel
	BadAsn1Build
	BadSendto
	BadParse
	BadRecvfrom
	Asn1ParseErr
	UnknownSecModel
	InvalidMsg
	UnknownEngId
	UnknownUserName
	UnsupportedSecLevel
	AuthenticationFailure
	NotInTimeWindow
	DecryptionError
	ScGeneralFailure
	ScNotConfigured
	UnknownReport
	UsmGeneric
	UsmUnknownEngineId
	UsmUnknownUser
	UsmUnsupportedLevel
	UsmAuth
	UsmDecrypt
	UsmNotInTimeWindow
	UsmParse
	Malloc
	Timeout
	Abort
	Protocol
	OidNonincreasing
	JustAContextProbe
	TransportConfigError
)

var errorKindNames = map[ErrorKind]string{
	Success:               "success",
	GenErr:                "generic error",
	BadAddress:            "bad address",
	BadSession:            "bad session",
	TooLong:               "message too long",
	BadVersion:            "bad version",
	BadContext:            "bad context",
	BadCommunity:          "bad community",
	BadSecName:            "bad security name",
	BadSecLevel:           "bad security level",
	BadAsn1Build:          "BER build failure",
	BadSendto:             "transport send failure",
	BadParse:              "BER parse failure",
	BadRecvfrom:           "transport receive failure",
	Asn1ParseErr:          "ASN.1 parse error",
	UnknownSecModel:       "unknown security model",
	InvalidMsg:            "invalid message",
	UnknownEngId:          "unknown engine id",
	UnknownUserName:       "unknown user name",
	UnsupportedSecLevel:   "unsupported security level",
	AuthenticationFailure: "authentication failure",
	NotInTimeWindow:       "not in time window",
	DecryptionError:       "decryption error",
	ScGeneralFailure:      "security subsystem general failure",
	ScNotConfigured:       "security subsystem not configured",
	UnknownReport:         "unknown report",
	UsmGeneric:            "usm generic error",
	UsmUnknownEngineId:    "usm unknown engine id",
	UsmUnknownUser:        "usm unknown user",
	UsmUnsupportedLevel:   "usm unsupported security level",
	UsmAuth:               "usm authentication failure",
	UsmDecrypt:            "usm decryption failure",
	UsmNotInTimeWindow:    "usm not in time window",
	UsmParse:              "usm parse error",
	Malloc:                "allocation failure",
	Timeout:               "timeout",
	Abort:                 "aborted",
	Protocol:              "protocol error",
	OidNonincreasing:      "oid not increasing",
	JustAContextProbe:     "context engine id probe only",
	TransportConfigError:  "transport configuration error",
}

func (k ErrorKind) String() string {
	if s, ok := errorKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// SnmpError is the concrete error type returned by every fallible engine
// operation. Detail carries a human-readable string for legacy callers
// that want one message slot; prefer errors.Is/As against Kind for
// programmatic handling.
type SnmpError struct {
	Kind   ErrorKind
	Detail string
	cause  error
}

func (e *SnmpError) Error() string {
	if e.Detail == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// Unwrap lets errors.Is/errors.As (both stdlib and pkg/errors) see
// through to the underlying cause, e.g. a transport's net.Error.
func (e *SnmpError) Unwrap() error { return e.cause }

// newErr constructs a SnmpError, wrapping cause (if any) with
// pkg/errors so a stack trace is attached the first time the failure is
// created rather than when it is finally logged.
func newErr(kind ErrorKind, detail string, cause error) *SnmpError {
	se := &SnmpError{Kind: kind, Detail: detail}
	if cause != nil {
		se.cause = errors.WithStack(cause)
	}
	return se
}

func errf(kind ErrorKind, format string, args ...interface{}) *SnmpError {
	return newErr(kind, fmt.Sprintf(format, args...), nil)
}

func wrapErr(kind ErrorKind, cause error, detail string) *SnmpError {
	return newErr(kind, detail, cause)
}

// Is lets callers write `errors.Is(err, gosnmp.Timeout)`-style checks by
// comparing the Kind; ErrorKind itself satisfies no error interface, so
// this method lives on SnmpError and compares against a bare ErrorKind
// wrapped as a sentinel via KindError.
func (e *SnmpError) Is(target error) bool {
	other, ok := target.(*SnmpError)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}

// KindError returns a sentinel *SnmpError carrying only a Kind, suitable
// for use with errors.Is(err, gosnmp.KindError(gosnmp.Timeout)).
func KindError(kind ErrorKind) *SnmpError { return &SnmpError{Kind: kind} }

// errorKind extracts the Kind of err if it is (or wraps) a *SnmpError,
// for callers that need to branch on failure class, e.g. choosing which
// counter to bump.
func errorKind(err error) (ErrorKind, bool) {
	for err != nil {
		if se, ok := err.(*SnmpError); ok {
			return se.Kind, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return Success, false
		}
		err = u.Unwrap()
	}
	return Success, false
}

// Result is the {Success, Error, Timeout} outcome of a synchronous call.
type Result int

const (
	ResultSuccess Result = iota
	ResultError
	ResultTimeout
)
