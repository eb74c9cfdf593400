package gosnmp

// Copyright 2012-2016 The GoSNMP Authors. All rights reserved.  Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

// UDPTransport is the stock Transport for classic SNMP-over-UDP: a
// single UDP socket, datagram-per-packet framing, and a short read
// deadline standing in for genuine non-blocking I/O since net.UDPConn
// has no poll-without-blocking primitive of its own.

import (
	"errors"
	"net"
	"time"
)

const udpRecvBudget = time.Millisecond

// UDPTransport wraps a connected or bound *net.UDPConn as a Transport.
type UDPTransport struct {
	conn    *net.UDPConn
	maxSize int
}

// DialUDPTransport opens a UDP socket connected to addr, for a manager
// session talking to one agent.
func DialUDPTransport(addr string) (*UDPTransport, error) {
	return DialUDPTransportFrom(addr, "")
}

// DialUDPTransportFrom opens a UDP socket connected to addr, bound to
// localAddr ("" for the OS default) — the "clientaddr" ConfigStore
// directive's target.
func DialUDPTransportFrom(addr, localAddr string) (*UDPTransport, error) {
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, wrapErr(BadAddress, err, "resolving udp address")
	}
	var laddr *net.UDPAddr
	if localAddr != "" {
		laddr, err = net.ResolveUDPAddr("udp", localAddr)
		if err != nil {
			return nil, wrapErr(BadAddress, err, "resolving local udp address")
		}
	}
	conn, err := net.DialUDP("udp", laddr, raddr)
	if err != nil {
		return nil, wrapErr(BadAddress, err, "dialing udp")
	}
	return &UDPTransport{conn: conn, maxSize: defaultMaxSize}, nil
}

// SetBufferSizes sets the underlying socket's send/receive buffer
// sizes; a zero value leaves that side at the OS default
// ("sendBufferSize"/"recvBufferSize" directives).
func (t *UDPTransport) SetBufferSizes(send, recv int) error {
	if send > 0 {
		if err := t.conn.SetWriteBuffer(send); err != nil {
			return wrapErr(TransportConfigError, err, "setting udp send buffer size")
		}
	}
	if recv > 0 {
		if err := t.conn.SetReadBuffer(recv); err != nil {
			return wrapErr(TransportConfigError, err, "setting udp recv buffer size")
		}
	}
	return nil
}

// ListenUDPTransport binds a UDP socket for an agent/trap-receiver
// session.
func ListenUDPTransport(addr string) (*UDPTransport, error) {
	laddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, wrapErr(BadAddress, err, "resolving udp address")
	}
	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return nil, wrapErr(BadAddress, err, "listening on udp")
	}
	return &UDPTransport{conn: conn, maxSize: defaultMaxSize}, nil
}

func (t *UDPTransport) Send(b []byte) error {
	_, err := t.conn.Write(b)
	if err != nil {
		return wrapErr(BadSendto, err, "udp write")
	}
	return nil
}

// Recv polls for one datagram, returning (nil, nil, nil) if none arrived
// within udpRecvBudget. This is UDPTransport's approximation of
// non-blocking receive, since net.UDPConn offers no poll-without-blocking
// call.
func (t *UDPTransport) Recv() ([]byte, net.Addr, error) {
	buf := make([]byte, t.maxSize)
	if err := t.conn.SetReadDeadline(time.Now().Add(udpRecvBudget)); err != nil {
		return nil, nil, wrapErr(BadRecvfrom, err, "setting udp read deadline")
	}
	n, addr, err := t.conn.ReadFromUDP(buf)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, nil, nil
		}
		return nil, nil, wrapErr(BadRecvfrom, err, "udp read")
	}
	return buf[:n], addr, nil
}

func (t *UDPTransport) Fd() int { return -1 }

func (t *UDPTransport) MsgMaxSize() int { return t.maxSize }

// CheckPacket always reports the whole buffer as one complete packet:
// UDP delivers datagrams whole, with no stream framing to resynchronize.
func (t *UDPTransport) CheckPacket(buf []byte) (int, error) { return len(buf), nil }

func (t *UDPTransport) Close() error { return t.conn.Close() }

func (t *UDPTransport) IsStream() bool { return false }

func (t *UDPTransport) RemoteAddr() net.Addr { return t.conn.RemoteAddr() }
