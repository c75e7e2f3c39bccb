// Copyright (C) 2026 The Syncthing Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package service

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/syncthing/ssdp/lib/mcast"
	"github.com/syncthing/ssdp/lib/ssdp"
)

const minAnnounceInterval = time.Second

// An Announcer multicasts ssdp:alive for a service when started and then
// periodically, and ssdp:byebye when stopped. It is a suture.Service and
// runs independently of the Service answering searches.
type Announcer struct {
	desc     ssdp.ServiceDescription
	scope    ssdp.Scope
	port     int
	interval time.Duration
}

// NewAnnouncer returns an Announcer repeating the alive message every half
// expiration period, but not more often than once a second.
func NewAnnouncer(desc ssdp.ServiceDescription, scope ssdp.Scope) *Announcer {
	interval := time.Duration(desc.Expiration) * time.Second / 2
	if interval < minAnnounceInterval {
		interval = minAnnounceInterval
	}
	return &Announcer{
		desc:     desc,
		scope:    scope,
		port:     ssdp.Port,
		interval: interval,
	}
}

// SetPort sets the destination port. It must be called before Serve.
func (a *Announcer) SetPort(port int) {
	a.port = port
}

func (a *Announcer) Serve(ctx context.Context) error {
	conn, err := mcast.Bind(ctx, a.scope.Network(), nil, false)
	if err != nil {
		return fmt.Errorf("announce: %w", err)
	}
	defer conn.Close()

	dst := a.scope.GroupAddr(a.port)
	alive := ssdp.BuildAlive(a.desc, a.scope)
	if err := a.send(conn, dst, alive, ssdp.NTSAlive); err != nil {
		return err
	}

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := a.send(conn, dst, alive, ssdp.NTSAlive); err != nil {
				return err
			}
		case <-ctx.Done():
			if err := a.send(conn, dst, ssdp.BuildByeBye(a.desc, a.scope), ssdp.NTSByeBye); err != nil {
				l.Infoln("Failed to withdraw service:", err)
			}
			return ctx.Err()
		}
	}
}

func (a *Announcer) send(conn *net.UDPConn, dst *net.UDPAddr, msg []byte, kind string) error {
	if _, err := conn.WriteTo(msg, dst); err != nil {
		return fmt.Errorf("announce: sending %s: %w", kind, err)
	}
	metricAnnouncementsTotal.WithLabelValues(kind).Inc()
	l.Debugf("Sent %s for %s to %v", kind, a.desc.USN, dst)
	return nil
}

func (a *Announcer) String() string {
	return fmt.Sprintf("Announcer@%p(%s)", a, a.desc.USN)
}
