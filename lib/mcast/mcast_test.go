// Copyright (C) 2026 The Syncthing Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package mcast

import (
	"context"
	"net"
	"runtime"
	"testing"

	"github.com/syncthing/ssdp/lib/ssdp"
)

func TestBindEphemeral(t *testing.T) {
	conn, err := Bind(context.Background(), "udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)}, false)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	if port := conn.LocalAddr().(*net.UDPAddr).Port; port == 0 {
		t.Error("expected an ephemeral port to be assigned")
	}
}

func TestBindConflict(t *testing.T) {
	ctx := context.Background()
	first, err := Bind(ctx, "udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)}, false)
	if err != nil {
		t.Fatal(err)
	}
	defer first.Close()

	second, err := Bind(ctx, "udp4", first.LocalAddr().(*net.UDPAddr), false)
	if err == nil {
		second.Close()
		t.Fatal("binding a used port without reuse should fail")
	}
}

func TestBindReuse(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("address reuse semantics differ per OS")
	}

	ctx := context.Background()
	first, err := Bind(ctx, "udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)}, true)
	if err != nil {
		t.Fatal(err)
	}
	defer first.Close()

	second, err := Bind(ctx, "udp4", first.LocalAddr().(*net.UDPAddr), true)
	if err != nil {
		t.Fatal("binding a port twice with reuse should succeed:", err)
	}
	second.Close()
}

func TestJoinLoopbackIsNoop(t *testing.T) {
	conn, err := Open(context.Background(), ssdp.Loopback, 0, false)
	if err != nil {
		t.Fatal(err)
	}
	conn.Close()
}

func TestJoinGlobalV4(t *testing.T) {
	conn, err := Bind(context.Background(), "udp4", nil, false)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	if err := Join(conn, ssdp.GlobalV4); err != nil {
		// Containers and CI hosts frequently lack a multicast capable
		// interface.
		t.Skip("multicast unavailable:", err)
	}
}

func TestJoinUnknownScope(t *testing.T) {
	conn, err := Bind(context.Background(), "udp4", nil, false)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	if err := Join(conn, ssdp.Scope(42)); err == nil {
		t.Error("joining an unknown scope should fail")
	}
}
