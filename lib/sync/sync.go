// Copyright (C) 2015 The Syncthing Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Package sync provides mutexes that log long hold times when the "sync"
// debug facility is enabled.
package sync

import (
	"fmt"
	"path/filepath"
	"runtime"
	"sync"
	"time"
)

type Mutex interface {
	Lock()
	Unlock()
}

func NewMutex() Mutex {
	if debug {
		return &loggedMutex{}
	}
	return &sync.Mutex{}
}

type holder struct {
	at   string
	time time.Time
}

func (h holder) String() string {
	if h.at == "" {
		return "not held"
	}
	return fmt.Sprintf("at %s since %s", h.at, h.time.Format(time.RFC3339Nano))
}

type loggedMutex struct {
	sync.Mutex
	holder holder
}

func (m *loggedMutex) Lock() {
	m.Mutex.Lock()
	m.holder = getHolder()
}

func (m *loggedMutex) Unlock() {
	if d := time.Since(m.holder.time); d >= threshold {
		l.Debugf("Mutex held for %v. Locked %s. Unlocked at %s", d, m.holder.at, getHolder().at)
	}
	m.holder = holder{}
	m.Mutex.Unlock()
}

func getHolder() holder {
	_, file, line, _ := runtime.Caller(2)
	file = filepath.Join(filepath.Base(filepath.Dir(file)), filepath.Base(file))
	return holder{
		at:   fmt.Sprintf("%s:%d", file, line),
		time: time.Now(),
	}
}
