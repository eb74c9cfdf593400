package gosnmp

// Copyright 2012-2016 The GoSNMP Authors. All rights reserved.  Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

import "time"

// ApplyConfig reads the classic snmp.conf-style directives from cs into
// a Session's defaults, the Go-native equivalent of
// DefaultStore's directive/value registry (Firmware read_config).
// Unset directives leave the Session's existing defaults untouched.
func ApplyConfig(s *Session, cs ConfigStore) {
	if cs == nil {
		return
	}
	if v, ok := cs.String("defSecurityName"); ok {
		s.UserName = v
	}
	if v, ok := cs.String("defContext"); ok {
		s.ContextName = v
	}
	if v, ok := cs.String("defPassphrase"); ok {
		s.AuthPassphrase = v
		s.PrivPassphrase = v
	}
	if v, ok := cs.String("defAuthPassphrase"); ok {
		s.AuthPassphrase = v
	}
	if v, ok := cs.String("defPrivPassphrase"); ok {
		s.PrivPassphrase = v
	}
	if v, ok := stringDirective(cs, "defSecLevel", "defSecurityLevel"); ok {
		switch v {
		case "noAuthNoPriv":
			s.SecurityLevel = LevelNoAuthNoPriv
		case "authNoPriv":
			s.SecurityLevel = LevelAuthNoPriv
		case "authPriv":
			s.SecurityLevel = LevelAuthPriv
		}
	}
	if v, ok := cs.Int("defSecurityModel"); ok {
		s.SecurityModel = v
	}
	if v, ok := stringDirective(cs, "defAuthProtocol", "defAuthType"); ok {
		switch v {
		case "MD5":
			s.AuthProtocol = AuthMD5
		case "SHA":
			s.AuthProtocol = AuthSHA
		}
	}
	if v, ok := stringDirective(cs, "defPrivProtocol", "defPrivType"); ok {
		switch v {
		case "DES":
			s.PrivProtocol = PrivDES
		case "AES":
			s.PrivProtocol = PrivAES
		}
	}
	if v, ok := intDirective(cs, "retries", "defRetries"); ok {
		s.DefaultRetries = v
	}
	if v, ok := cs.Int("timeout"); ok {
		s.DefaultTimeout = secondsToDuration(v)
	}
	if v, ok := cs.Int("defaultPort"); ok {
		s.DefaultPort = v
	}
	if v, ok := cs.String("clientaddr"); ok {
		s.ClientAddr = v
	}
	if v, ok := cs.Int("sendBufferSize"); ok {
		s.SendBufferSize = v
	}
	if v, ok := cs.Int("recvBufferSize"); ok {
		s.RecvBufferSize = v
	}
	if v, ok := cs.Bool("reverseEncodeBER"); ok {
		s.ReverseEncodeBER = v
	}
	if v, ok := cs.Bool("noContextEngineIDDiscovery"); ok {
		s.NoContextEngineIDDiscovery = v
	}
	if v, ok := cs.Bool("16bitIDs"); ok && v {
		s.Engine.Use16BitIDs = true
	}
	if v, ok := cs.Bool("dumpPacket"); ok {
		s.Engine.dumpPacket = v
	}
	if v, ok := cs.String("persistentDir"); ok {
		s.Engine.PersistentDir = v
	}
	if v, ok := cs.Bool("noPersistentLoad"); ok {
		s.Engine.NoPersistentLoad = v
	}
	if v, ok := cs.Bool("noPersistentSave"); ok {
		s.Engine.NoPersistentSave = v
	}
}

// stringDirective returns the first of names that cs has set, preferring
// earlier names; used to accept a spec-documented directive name while
// still honoring the older name it replaces.
func stringDirective(cs ConfigStore, names ...string) (string, bool) {
	for _, name := range names {
		if v, ok := cs.String(name); ok {
			return v, ok
		}
	}
	return "", false
}

func intDirective(cs ConfigStore, names ...string) (int, bool) {
	for _, name := range names {
		if v, ok := cs.Int(name); ok {
			return v, ok
		}
	}
	return 0, false
}

func secondsToDuration(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}
