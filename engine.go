package gosnmp

// Copyright 2012-2016 The GoSNMP Authors. All rights reserved.  Use of this
// source code is governed by a BSD-style license that can be found in the
// LICENSE file.

// Engine is the process-wide context holding the session list, the id
// counters, and the security-model registry as an explicit struct
// rather than package-level state, with a thin default wrapper for
// callers that want single-instance, global-singleton ergonomics.

import (
	crand "crypto/rand"
	"encoding/binary"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Engine bundles everything shared across sessions. Each field group is
// guarded by its own mutex, acquired only briefly.
type Engine struct {
	SecurityModels *SecurityModelRegistry
	Stats          *Stats
	Logger         LogSink

	// Use16BitIDs masks minted ids to 15 bits instead of 31, for
	// interoperating with legacy peers (ConfigStore directive "16bitIDs").
	Use16BitIDs bool

	idMu      sync.Mutex
	nextID    uint32
	sessionMu sync.Mutex
	sessions  []*Session

	dumpPacket bool

	// LocalEngineID identifies this process as an authoritative engine
	// (e.g. for traps/informs or agent-side responses). Empty until the
	// caller sets it.
	LocalEngineID []byte
	LocalBoots    uint32
	LCD           *EngineTimeCache
	startMono     time.Time

	// BootsFile, if set, is where LocalBoots is persisted across
	// restarts (Firmware/Core/LcdTime.c's engineBoots file). If empty
	// but PersistentDir is set, LoadBootsFile derives it from
	// PersistentDir instead.
	BootsFile string

	// PersistentDir is the directory housing the boots counter and
	// saved USM users when BootsFile/an explicit path isn't given
	// ("persistentDir" ConfigStore directive).
	PersistentDir string
	// NoPersistentLoad/NoPersistentSave skip reading/writing those
	// files even when a path is available ("noPersistentLoad"/
	// "noPersistentSave" directives).
	NoPersistentLoad bool
	NoPersistentSave bool

	// Alarms holds one-off scheduled callbacks (e.g. periodic USM
	// housekeeping) alongside the session-deadline-driven reactor glue.
	Alarms *AlarmSet

	// InstanceID tags every log line from this Engine, so multiple
	// engines sharing a process's log stream can be told apart.
	InstanceID string
}

// NewEngine builds an Engine with USM pre-registered, the only security
// model this core ships.
func NewEngine() *Engine {
	e := &Engine{
		SecurityModels: NewSecurityModelRegistry(),
		Stats:          NewStats(),
		Logger:         nopLogSink{},
		LCD:            NewEngineTimeCache(),
		Alarms:         NewAlarmSet(),
		startMono:      time.Now(),
		InstanceID:     uuid.NewString(),
	}
	seed := make([]byte, 4)
	if _, err := crand.Read(seed); err == nil {
		e.nextID = binary.BigEndian.Uint32(seed)
	} else {
		e.nextID = 1
	}
	_ = e.SecurityModels.Register(NewUSM(e))
	return e
}

// defaultEngine backs the package-level convenience functions: a
// process-wide default context for callers that don't need more than
// one Engine.
var defaultEngine = NewEngine()

// DefaultEngine returns the shared process-wide Engine.
func DefaultEngine() *Engine { return defaultEngine }

// mintID returns the next monotonic identifier, masked to 31 bits (or
// 15 if Use16BitIDs is set) and never zero.
func (e *Engine) mintID() int32 {
	e.idMu.Lock()
	defer e.idMu.Unlock()
	mask := uint32(0x7fffffff)
	if e.Use16BitIDs {
		mask = 0x7fff
	}
	for {
		e.nextID++
		v := e.nextID & mask
		if v != 0 {
			return int32(v)
		}
	}
}

func (e *Engine) addSession(s *Session) {
	e.sessionMu.Lock()
	defer e.sessionMu.Unlock()
	e.sessions = append(e.sessions, s)
}

func (e *Engine) removeSession(s *Session) {
	e.sessionMu.Lock()
	defer e.sessionMu.Unlock()
	for i, cur := range e.sessions {
		if cur == s {
			e.sessions = append(e.sessions[:i], e.sessions[i+1:]...)
			return
		}
	}
}

// Sessions returns a snapshot of the currently open sessions.
func (e *Engine) Sessions() []*Session {
	e.sessionMu.Lock()
	defer e.sessionMu.Unlock()
	out := make([]*Session, len(e.sessions))
	copy(out, e.sessions)
	return out
}

// bootsFilePath resolves BootsFile, falling back to a fixed name under
// PersistentDir when BootsFile itself is unset.
func (e *Engine) bootsFilePath() string {
	if e.BootsFile != "" {
		return e.BootsFile
	}
	if e.PersistentDir != "" {
		return filepath.Join(e.PersistentDir, "gosnmp_boots")
	}
	return ""
}

// LoadBootsFile initializes LocalBoots from BootsFile (or PersistentDir),
// incrementing and persisting it as a cold-start marker (LcdTime.c
// semantics). A no-op if no path resolves, or if NoPersistentLoad is
// set.
func (e *Engine) LoadBootsFile() error {
	path := e.bootsFilePath()
	if path == "" || e.NoPersistentLoad {
		return nil
	}
	boots, err := InitLocalBoots(path)
	if err != nil {
		return err
	}
	e.LocalBoots = boots
	return nil
}

// usmUsersFilePath resolves where SaveUsmUsers/LoadUsmUsers persist the
// USM user table under PersistentDir.
func (e *Engine) usmUsersFilePath() string {
	if e.PersistentDir == "" {
		return ""
	}
	return filepath.Join(e.PersistentDir, "gosnmp_usmusers")
}

// SaveUsmUsersToPersistentDir writes users to PersistentDir's USM user
// file, or is a no-op if PersistentDir is unset or NoPersistentSave is
// set.
func (e *Engine) SaveUsmUsersToPersistentDir(users []*UsmUser) error {
	path := e.usmUsersFilePath()
	if path == "" || e.NoPersistentSave {
		return nil
	}
	return SaveUsmUsers(path, users)
}

// LoadUsmUsersFromPersistentDir reads back the USM user file saved by
// SaveUsmUsersToPersistentDir, or returns (nil, nil) if PersistentDir
// is unset or NoPersistentLoad is set.
func (e *Engine) LoadUsmUsersFromPersistentDir() ([]*UsmUser, error) {
	path := e.usmUsersFilePath()
	if path == "" || e.NoPersistentLoad {
		return nil, nil
	}
	return LoadUsmUsers(path)
}

func (e *Engine) log() LogSink {
	if e.Logger == nil {
		return nopLogSink{}
	}
	return e.Logger
}
