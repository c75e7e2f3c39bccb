// Copyright (C) 2026 The Syncthing Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Package mcast binds UDP sockets and joins them to the multicast group of
// an SSDP scope.
package mcast

import (
	"context"
	"net"

	"github.com/pkg/errors"
	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"

	"github.com/syncthing/ssdp/lib/ssdp"
)

// BufferSize is the size of a single datagram read. Longer datagrams are
// truncated.
const BufferSize = 1024

// Bind opens a UDP socket on laddr. With reuse set, the socket allows other
// listeners that also ask for it to bind the same port.
func Bind(ctx context.Context, network string, laddr *net.UDPAddr, reuse bool) (*net.UDPConn, error) {
	if laddr == nil {
		laddr = &net.UDPAddr{}
	}

	lc := net.ListenConfig{}
	if reuse {
		lc.Control = reuseAddr
	}

	pc, err := lc.ListenPacket(ctx, network, laddr.String())
	if err != nil {
		return nil, errors.Wrapf(err, "bind %s %v", network, laddr)
	}
	l.Debugln("Bound", network, pc.LocalAddr())
	return pc.(*net.UDPConn), nil
}

// Join adds conn to the multicast group of scope. IPv4 groups are joined on
// the system default interface, IPv6 groups on interface index zero. The
// loopback scope joins nothing.
func Join(conn *net.UDPConn, scope ssdp.Scope) error {
	if scope == ssdp.Loopback {
		l.Debugln("Not joining a group for", scope)
		return nil
	}

	if ip, ok := scope.V4(); ok {
		if err := ipv4.NewPacketConn(conn).JoinGroup(nil, &net.UDPAddr{IP: ip}); err != nil {
			return errors.Wrapf(err, "IPv4 join %v", ip)
		}
		l.Debugln("IPv4 join", ip, "on", conn.LocalAddr())
		return nil
	}

	if ip, ok := scope.V6(); ok {
		if err := ipv6.NewPacketConn(conn).JoinGroup(nil, &net.UDPAddr{IP: ip}); err != nil {
			return errors.Wrapf(err, "IPv6 join %v", ip)
		}
		l.Debugln("IPv6 join", ip, "on", conn.LocalAddr())
		return nil
	}

	return errors.Errorf("join: unknown scope %v", scope)
}

// Open binds a socket of the scope's address family on port (zero for an
// ephemeral port) and joins it to the scope's group.
func Open(ctx context.Context, scope ssdp.Scope, port int, reuse bool) (*net.UDPConn, error) {
	conn, err := Bind(ctx, scope.Network(), &net.UDPAddr{Port: port}, reuse)
	if err != nil {
		return nil, err
	}
	if err := Join(conn, scope); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}
