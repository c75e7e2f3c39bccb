// Copyright (C) 2026 The Syncthing Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Package client implements the searching side of SSDP: it multicasts a
// single M-SEARCH and collects the answers that arrive within a fixed time
// window.
package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/syncthing/ssdp/lib/mcast"
	"github.com/syncthing/ssdp/lib/registry"
	"github.com/syncthing/ssdp/lib/ssdp"
	"github.com/syncthing/ssdp/lib/sync"
)

const (
	DefaultTimeout = 5 * time.Second

	// PlaceholderExpiration is recorded as the expiration of every
	// discovered service. The max-age of the answer is not parsed.
	PlaceholderExpiration = 100
)

// A Client searches for services and remembers every service that answered.
//
//	| USN              | Service type    | Expiration | Location          |
//	|------------------|-----------------|------------|-------------------|
//	| upnp:uuid:k91... | upnp:clockradio | 3 days     | http://foo.com/cr |
//	| uuid:x7z...      | ms:wince        | 1 week     | http://msce/win   |
type Client struct {
	services *registry.Registry
	timeout  time.Duration
	port     int
	mut      sync.Mutex // protects timeout and port
}

func New() *Client {
	return &Client{
		services: registry.New(),
		timeout:  DefaultTimeout,
		port:     ssdp.Port,
		mut:      sync.NewMutex(),
	}
}

// SetTimeout sets how long subsequent calls to Discover collect answers.
func (c *Client) SetTimeout(timeout time.Duration) {
	c.mut.Lock()
	c.timeout = timeout
	c.mut.Unlock()
}

// SetPort sets the port searches are sent to. The default is ssdp.Port.
func (c *Client) SetPort(port int) {
	c.mut.Lock()
	c.port = port
	c.mut.Unlock()
}

// Services returns a copy of the services found so far. It may be called
// while a discovery is in progress.
func (c *Client) Services() []ssdp.ServiceDescription {
	return c.services.Snapshot()
}

// Discover multicasts a search for searchTarget ("ssdp:all" for every
// service) on the given scope and records the answers received until the
// timeout has passed. The identifier is sent as the S header and should be
// unique to this client, e.g. "uuid:83760048-2d32-4e48-854f-f63a8fa9fd09".
//
// Discover always runs for the full timeout; finding nothing is not an
// error. It returns early only when ctx is cancelled or the socket cannot
// be set up.
func (c *Client) Discover(ctx context.Context, identifier string, scope ssdp.Scope, searchTarget string) error {
	c.mut.Lock()
	timeout, port := c.timeout, c.port
	c.mut.Unlock()

	err := c.discover(ctx, identifier, scope, searchTarget, timeout, port)
	switch {
	case err == nil:
		metricDiscoveriesTotal.WithLabelValues(resultOK).Inc()
	case ctx.Err() != nil:
		metricDiscoveriesTotal.WithLabelValues(resultCancelled).Inc()
	default:
		metricDiscoveriesTotal.WithLabelValues(resultError).Inc()
	}
	return err
}

func (c *Client) discover(ctx context.Context, identifier string, scope ssdp.Scope, searchTarget string, timeout time.Duration, port int) error {
	conn, err := mcast.Open(ctx, scope, 0, false)
	if err != nil {
		return fmt.Errorf("discover: %w", err)
	}
	defer conn.Close()

	dst := scope.GroupAddr(port)
	if _, err := conn.WriteTo(ssdp.BuildSearch(identifier, searchTarget, scope), dst); err != nil {
		return fmt.Errorf("discover: sending search: %w", err)
	}
	l.Debugf("Sent search for %q to %v, collecting answers for %v", searchTarget, dst, timeout)

	if err := c.collect(ctx, conn, time.Now().Add(timeout)); err != nil {
		return err
	}

	l.Debugf("Services found: %+v", c.services.Snapshot())
	return nil
}

// collect reads answers from conn until the deadline. Every read shares
// the same absolute deadline, so the time spent here is bounded no matter
// how many datagrams arrive.
func (c *Client) collect(ctx context.Context, conn net.PacketConn, deadline time.Time) error {
	if err := conn.SetReadDeadline(deadline); err != nil {
		return fmt.Errorf("discover: %w", err)
	}

	doneCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-doneCtx.Done()
		// Wakes up the pending read; the loop below then sees ctx.Err().
		conn.SetReadDeadline(time.Now())
	}()

	buf := make([]byte, mcast.BufferSize)
	for {
		n, src, err := conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, net.ErrClosed) {
				return fmt.Errorf("discover: %w", err)
			}
			var nerr net.Error
			if errors.As(err, &nerr) && nerr.Timeout() {
				return nil
			}
			l.Infoln("Discovery receive:", err)
			metricResponsesTotal.WithLabelValues(resultError).Inc()
			continue
		}
		c.handle(buf[:n], src)
	}
}

func (c *Client) handle(data []byte, src net.Addr) {
	l.Debugf("Received %d bytes from %v: %q", len(data), src, data)

	ans, err := ssdp.ParseSearchAnswer(data)
	if err != nil {
		l.Debugln("Ignoring datagram from", src, "-", err)
		metricResponsesTotal.WithLabelValues(resultRejected).Inc()
		return
	}

	// Location is the raw AL value, "<service type><location>", as the
	// answer carries it.
	desc := ssdp.ServiceDescription{
		USN:         ans.USN,
		ServiceType: ans.ServiceType,
		Expiration:  PlaceholderExpiration,
		Location:    ans.AL,
	}
	if c.services.Upsert(desc) {
		l.Debugln("Discovered", desc.USN, "at", src)
		metricResponsesTotal.WithLabelValues(resultNew).Inc()
	} else {
		metricResponsesTotal.WithLabelValues(resultUpdated).Inc()
	}
}
