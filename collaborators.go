package gosnmp

// Copyright 2012-2016 The GoSNMP Authors. All rights reserved.  Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

import (
	"net"
	"time"
)

// The interfaces below are the external collaborators this package
// deliberately keeps out of the core: MIB resolution, configuration,
// transport, fd multiplexing, and logging. The engine depends only on
// these contracts; concrete implementations live outside this package
// (config/, logging/) or are supplied by the embedding application.

// MibResolver translates between symbolic names and OIDs and coerces
// textual values, e.g. "sysDescr.0" <-> 1.3.6.1.2.1.1.1.0. The core
// never calls this itself; it is exposed so callers building PDUs by
// name can share one resolver across sessions.
type MibResolver interface {
	Resolve(name string) (OID, error)
	Describe(oid OID) (name string, ok bool)
}

// ConfigStore is the directive-to-effect contract for session defaults.
// ApplyConfig reads session defaults through it into a Session; the
// core never persists to it or parses argv itself.
type ConfigStore interface {
	Bool(key string) (bool, bool)
	Int(key string) (int, bool)
	String(key string) (string, bool)
}

// Transport is the minimum a session needs from a UDP/TCP/TLS/DTLS
// endpoint: non-blocking send/receive, an fd for the reactor, and a
// negotiated max message size. No blocking I/O may happen behind this
// interface.
type Transport interface {
	// Send writes one datagram/frame; non-blocking, returns the error
	// the OS gave if the write would block or failed outright.
	Send(b []byte) error
	// Recv returns the next available datagram/frame, or a nil slice
	// and a nil error if none is ready yet, without blocking.
	Recv() ([]byte, net.Addr, error)
	// Fd returns the underlying descriptor for reactor registration, or
	// -1 if this transport has none (e.g. an in-process test double).
	Fd() int
	// MsgMaxSize is the largest frame this transport can carry.
	MsgMaxSize() int
	// CheckPacket reports how many bytes of buf form one complete
	// packet for stream transports; 0 means "need more data".
	CheckPacket(buf []byte) (int, error)
	Close() error
	// IsStream distinguishes TCP/TLS-like framing from UDP/DTLS-like
	// whole-datagram transports step 1.
	IsStream() bool
	RemoteAddr() net.Addr
}

// ListeningTransport is implemented by stream transports that can
// accept inbound connections.
type ListeningTransport interface {
	Transport
	Accept() (Transport, error)
}

// FdReactor is the file-descriptor event demultiplexer the engine
// contributes fds and deadlines to, rather than owning a select loop
// itself.
type FdReactor interface {
	AddReadFd(fd int)
	RemoveReadFd(fd int)
	SetTimeout(d time.Duration)
}

// LogSink is the logging contract; concrete sinks (e.g. the zap-backed
// one in gosnmp/logging) implement this. A nil LogSink is valid and
// discards everything.
type LogSink interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// nopLogSink discards everything; used when Engine.Logger is nil.
type nopLogSink struct{}

func (nopLogSink) Debugf(string, ...interface{}) {}
func (nopLogSink) Infof(string, ...interface{})  {}
func (nopLogSink) Warnf(string, ...interface{})  {}
func (nopLogSink) Errorf(string, ...interface{}) {}
