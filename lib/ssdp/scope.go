// Copyright (C) 2026 The Syncthing Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package ssdp

import (
	"errors"
	"fmt"
	"net"
	"strconv"
)

// Port is the IANA assigned SSDP port.
const Port = 1900

// Scope selects the multicast network a discovery exchange is confined to.
// The set of scopes is closed; every accessor switches over all of them.
type Scope int

const (
	// GlobalV4 is the IPv4 group 239.255.255.250.
	GlobalV4 Scope = iota
	// LinkLocalV6 is the IPv6 link-local group ff02::c.
	LinkLocalV6
	// SiteLocalV6 is the IPv6 site-local group ff05::c.
	SiteLocalV6
	// Loopback is 127.0.0.1 and joins no group. Multicast is not reliably
	// looped back to the sending host, so this scope exists to run a client
	// and a service on the same machine, typically in tests.
	Loopback
)

var (
	groupV4         = net.IPv4(239, 255, 255, 250).To4()
	loopbackV4      = net.IPv4(127, 0, 0, 1).To4()
	linkLocalV6     = net.ParseIP("ff02::c")
	siteLocalV6     = net.ParseIP("ff05::c")
	scopeNames      = [...]string{"v4", "v6-link-local", "v6-site-local", "loopback"}
	errUnknownScope = errors.New("unknown scope")
)

// Addr returns the IP address of the scope, or nil for an unknown scope.
func (s Scope) Addr() net.IP {
	if ip, ok := s.V4(); ok {
		return ip
	}
	if ip, ok := s.V6(); ok {
		return ip
	}
	return nil
}

// IsV4 returns true for the IPv4 scopes and false for the IPv6 ones.
func (s Scope) IsV4() bool {
	switch s {
	case GlobalV4, Loopback:
		return true
	case LinkLocalV6, SiteLocalV6:
		return false
	default:
		return false
	}
}

// V4 returns the address of an IPv4 scope. It never returns an address for
// an IPv6 scope.
func (s Scope) V4() (net.IP, bool) {
	switch s {
	case GlobalV4:
		return copyIP(groupV4), true
	case Loopback:
		return copyIP(loopbackV4), true
	case LinkLocalV6, SiteLocalV6:
		return nil, false
	default:
		return nil, false
	}
}

// V6 returns the address of an IPv6 scope. It never returns an address for
// an IPv4 scope.
func (s Scope) V6() (net.IP, bool) {
	switch s {
	case LinkLocalV6:
		return copyIP(linkLocalV6), true
	case SiteLocalV6:
		return copyIP(siteLocalV6), true
	case GlobalV4, Loopback:
		return nil, false
	default:
		return nil, false
	}
}

// Network returns the Go network name matching the scope's address family.
func (s Scope) Network() string {
	if s.IsV4() {
		return "udp4"
	}
	return "udp6"
}

// GroupAddr returns the scope address combined with the given port.
func (s Scope) GroupAddr(port int) *net.UDPAddr {
	return &net.UDPAddr{IP: s.Addr(), Port: port}
}

// HostPort is the value of the Host header for the scope.
func (s Scope) HostPort(port int) string {
	return net.JoinHostPort(s.Addr().String(), strconv.Itoa(port))
}

func (s Scope) String() string {
	if s < 0 || int(s) >= len(scopeNames) {
		return "Scope(" + strconv.Itoa(int(s)) + ")"
	}
	return scopeNames[s]
}

func (s Scope) MarshalText() ([]byte, error) {
	if s < 0 || int(s) >= len(scopeNames) {
		return nil, errUnknownScope
	}
	return []byte(scopeNames[s]), nil
}

func (s *Scope) UnmarshalText(bs []byte) error {
	for i, name := range scopeNames {
		if string(bs) == name {
			*s = Scope(i)
			return nil
		}
	}
	return fmt.Errorf("%w %q", errUnknownScope, bs)
}

func copyIP(ip net.IP) net.IP {
	c := make(net.IP, len(ip))
	copy(c, ip)
	return c
}
