// Copyright (C) 2026 The Syncthing Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package service

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/syncthing/ssdp/lib/ssdp"
)

func TestAnnouncerInterval(t *testing.T) {
	cases := []struct {
		expiration uint32
		interval   time.Duration
	}{
		{0, time.Second},
		{1, time.Second},
		{100, 50 * time.Second},
		{1800, 15 * time.Minute},
	}

	for _, tc := range cases {
		desc := testDesc
		desc.Expiration = tc.expiration
		assert.Equal(t, tc.interval, NewAnnouncer(desc, ssdp.GlobalV4).interval, "expiration %d", tc.expiration)
	}
}

func TestAnnouncerAliveAndByeBye(t *testing.T) {
	listener, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatal(err)
	}
	defer listener.Close()

	a := NewAnnouncer(testDesc, ssdp.Loopback)
	a.SetPort(listener.LocalAddr().(*net.UDPAddr).Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errC := make(chan error, 1)
	go func() { errC <- a.Serve(ctx) }()

	nts := func() string {
		t.Helper()
		buf := make([]byte, 2048)
		listener.SetReadDeadline(time.Now().Add(2 * time.Second))
		n, _, err := listener.ReadFrom(buf)
		if err != nil {
			t.Fatal(err)
		}
		msg, err := ssdp.ParseMessage(buf[:n])
		if err != nil {
			t.Fatal(err)
		}
		assert.Equal(t, ssdp.MethodNotify, msg.Method)
		usn, _ := msg.Header("USN")
		assert.Equal(t, testDesc.USN, usn)
		v, _ := msg.Header("NTS")
		return v
	}

	if got := nts(); got != ssdp.NTSAlive {
		t.Fatalf("expected %s first, got %s", ssdp.NTSAlive, got)
	}

	cancel()
	if got := nts(); got != ssdp.NTSByeBye {
		t.Fatalf("expected %s on stop, got %s", ssdp.NTSByeBye, got)
	}

	select {
	case err := <-errC:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("announcer did not stop")
	}
}
