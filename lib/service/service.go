// Copyright (C) 2026 The Syncthing Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Package service implements the responding side of SSDP: it listens for
// M-SEARCH requests and unicasts an answer to the ones matching its
// service type.
package service

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/syncthing/ssdp/lib/mcast"
	"github.com/syncthing/ssdp/lib/ssdp"
	"github.com/syncthing/ssdp/lib/sync"
)

// A Service answers searches for one service description. It never sends
// NOTIFY messages by itself; see Announcer for that.
type Service struct {
	desc       ssdp.ServiceDescription
	port       int
	limitAvg   float64
	limitBurst int
	mut        sync.Mutex // protects port and the limit settings
}

func New(desc ssdp.ServiceDescription) *Service {
	return &Service{
		desc: desc,
		port: ssdp.Port,
		mut:  sync.NewMutex(),
	}
}

func (s *Service) Description() ssdp.ServiceDescription {
	return s.desc
}

// SetPort sets the port Listen binds. The default is ssdp.Port.
func (s *Service) SetPort(port int) {
	s.mut.Lock()
	s.port = port
	s.mut.Unlock()
}

// SetAnswerLimit limits answers to avg per second, with bursts of up to
// burst, for each source address. A non-positive avg removes the limit,
// which is the default. It takes effect for subsequent calls to Listen.
func (s *Service) SetAnswerLimit(avg float64, burst int) {
	s.mut.Lock()
	s.limitAvg = avg
	s.limitBurst = burst
	s.mut.Unlock()
}

// Listen binds the SSDP port on all interfaces, joins the scope's group and
// answers searches until ctx is cancelled or the socket fails. There is no
// retry: a bind, join, receive or send error is returned to the caller.
func (s *Service) Listen(ctx context.Context, scope ssdp.Scope) error {
	s.mut.Lock()
	port := s.port
	s.mut.Unlock()

	conn, err := mcast.Open(ctx, scope, port, true)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	defer conn.Close()

	l.Debugf("Listening for searches for %q on %v (%v)", s.desc.ServiceType, conn.LocalAddr(), scope)
	return s.ServeConn(ctx, conn)
}

// ServeConn answers searches received on an already bound conn. It is what
// Listen runs after setting up its socket, and returns under the same
// conditions.
func (s *Service) ServeConn(ctx context.Context, conn net.PacketConn) error {
	s.mut.Lock()
	limiter := newAnswerLimiter(s.limitAvg, s.limitBurst)
	s.mut.Unlock()

	doneCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-doneCtx.Done()
		conn.SetReadDeadline(time.Now())
	}()

	buf := make([]byte, mcast.BufferSize)
	for {
		n, src, err := conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("listen: receive: %w", err)
		}
		if err := s.handle(conn, limiter, buf[:n], src); err != nil {
			return err
		}
	}
}

func (s *Service) handle(conn net.PacketConn, limiter *answerLimiter, data []byte, src net.Addr) error {
	l.Debugf("Received %d bytes from %v: %q", len(data), src, data)

	req, err := ssdp.ParseSearch(data)
	if err != nil {
		l.Debugln("Ignoring datagram from", src, "-", err)
		metricSearchesTotal.WithLabelValues(resultRejected).Inc()
		return nil
	}

	if req.Target != ssdp.SearchAll && req.Target != s.desc.ServiceType {
		l.Debugf("Ignoring search for %q from %v", req.Target, src)
		metricSearchesTotal.WithLabelValues(resultOtherTarget).Inc()
		return nil
	}

	if !limiter.allow(src) {
		l.Debugln("Not answering", src, "- rate limited")
		metricSearchesTotal.WithLabelValues(resultLimited).Inc()
		return nil
	}

	answer := ssdp.BuildSearchAnswer(s.desc, req.Requester)
	if _, err := conn.WriteTo(answer, src); err != nil {
		return fmt.Errorf("listen: answering %v: %w", src, err)
	}
	metricSearchesTotal.WithLabelValues(resultAnswered).Inc()
	l.Debugf("Sent answer to %v: %q", src, answer)
	return nil
}
