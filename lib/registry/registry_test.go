// Copyright (C) 2026 The Syncthing Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package registry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/d4l3k/messagediff"

	"github.com/syncthing/ssdp/lib/ssdp"
)

func TestUpsertSameUSNKeepsLatest(t *testing.T) {
	r := New()

	first := ssdp.ServiceDescription{USN: "uuid:a", ServiceType: "x:one", Expiration: 1, Location: "http://one"}
	second := ssdp.ServiceDescription{USN: "uuid:a", ServiceType: "x:two", Expiration: 2, Location: "http://two"}

	if !r.Upsert(first) {
		t.Error("first upsert should append")
	}
	if r.Upsert(second) {
		t.Error("second upsert should replace")
	}

	expected := []ssdp.ServiceDescription{second}
	if diff, equal := messagediff.PrettyDiff(expected, r.Snapshot()); !equal {
		t.Errorf("unexpected registry contents; diff:\n%s", diff)
	}
}

func TestUpsertDistinctUSN(t *testing.T) {
	r := New()

	a := ssdp.ServiceDescription{USN: "uuid:a", ServiceType: "x:same"}
	b := ssdp.ServiceDescription{USN: "uuid:b", ServiceType: "x:same"}
	r.Upsert(a)
	r.Upsert(b)

	if r.Len() != 2 {
		t.Fatalf("expected two entries, got %d", r.Len())
	}
	expected := []ssdp.ServiceDescription{a, b}
	if diff, equal := messagediff.PrettyDiff(expected, r.Snapshot()); !equal {
		t.Errorf("unexpected registry contents; diff:\n%s", diff)
	}
}

func TestReplaceKeepsPosition(t *testing.T) {
	r := New()
	for _, usn := range []string{"a", "b", "c"} {
		r.Upsert(ssdp.ServiceDescription{USN: usn})
	}
	r.Upsert(ssdp.ServiceDescription{USN: "b", Location: "moved"})

	snap := r.Snapshot()
	if snap[1].USN != "b" || snap[1].Location != "moved" {
		t.Errorf("replaced entry should keep its position, got %+v", snap)
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	r := New()
	r.Upsert(ssdp.ServiceDescription{USN: "a", Location: "orig"})

	snap := r.Snapshot()
	snap[0].Location = "changed"

	if r.Snapshot()[0].Location != "orig" {
		t.Error("modifying a snapshot should not affect the registry")
	}
}

func TestConcurrentAccess(t *testing.T) {
	r := New()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.Upsert(ssdp.ServiceDescription{USN: fmt.Sprintf("uuid:%d", j%10), Expiration: uint32(i)})
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = r.Snapshot()
			}
		}()
	}
	wg.Wait()

	if r.Len() != 10 {
		t.Errorf("expected ten distinct entries, got %d", r.Len())
	}
}
