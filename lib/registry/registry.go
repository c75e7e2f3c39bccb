// Copyright (C) 2026 The Syncthing Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Package registry keeps the services seen by a discovery client.
package registry

import (
	"github.com/syncthing/ssdp/lib/ssdp"
	"github.com/syncthing/ssdp/lib/sync"
)

// A Registry is an insertion ordered set of service descriptions keyed by
// USN. It is safe for concurrent use; the lock is only held while copying
// descriptions in or out.
type Registry struct {
	services []ssdp.ServiceDescription
	index    map[string]int // USN => position in services
	mut      sync.Mutex
}

func New() *Registry {
	return &Registry{
		index: make(map[string]int),
		mut:   sync.NewMutex(),
	}
}

// Upsert replaces the entry with the same USN as desc, or appends desc if
// there is none. It returns true if desc was appended.
func (r *Registry) Upsert(desc ssdp.ServiceDescription) bool {
	r.mut.Lock()
	defer r.mut.Unlock()

	if i, ok := r.index[desc.USN]; ok {
		r.services[i] = desc
		return false
	}
	r.index[desc.USN] = len(r.services)
	r.services = append(r.services, desc)
	return true
}

// Snapshot returns a copy of the current entries in insertion order.
func (r *Registry) Snapshot() []ssdp.ServiceDescription {
	r.mut.Lock()
	defer r.mut.Unlock()

	res := make([]ssdp.ServiceDescription, len(r.services))
	copy(res, r.services)
	return res
}

func (r *Registry) Len() int {
	r.mut.Lock()
	defer r.mut.Unlock()
	return len(r.services)
}
