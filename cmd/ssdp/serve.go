// Copyright (C) 2026 The Syncthing Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/thejerf/suture/v4"

	"github.com/syncthing/ssdp/lib/mcast"
	"github.com/syncthing/ssdp/lib/service"
	"github.com/syncthing/ssdp/lib/ssdp"
	"github.com/syncthing/ssdp/lib/svcutil"
)

type serveCmd struct {
	USN           string     `help:"Unique service name" required:"" env:"SSDP_USN"`
	Type          string     `help:"Service type" required:"" env:"SSDP_TYPE"`
	Expiration    uint32     `help:"Expiration in seconds, advertised as max-age" default:"1800" env:"SSDP_EXPIRATION"`
	Location      string     `help:"Location of the service" env:"SSDP_LOCATION"`
	Scope         ssdp.Scope `help:"Multicast scope (v4, v6-link-local, v6-site-local, loopback)" default:"v4" env:"SSDP_SCOPE"`
	Port          int        `help:"Port to listen on" default:"1900" env:"SSDP_PORT"`
	Announce      bool       `help:"Multicast ssdp:alive periodically and ssdp:byebye on exit" env:"SSDP_ANNOUNCE"`
	LimitAvg      float64    `help:"Answers per second per requester, 0 to disable" default:"0" env:"SSDP_LIMIT_AVG"`
	LimitBurst    int        `help:"Answer burst per requester" default:"10" env:"SSDP_LIMIT_BURST"`
	MetricsListen string     `help:"Address to serve Prometheus metrics on" env:"SSDP_METRICS_LISTEN"`
}

func (c *serveCmd) description() ssdp.ServiceDescription {
	return ssdp.ServiceDescription{
		USN:         c.USN,
		ServiceType: c.Type,
		Expiration:  c.Expiration,
		Location:    c.Location,
	}
}

func (c *serveCmd) Run(ctx context.Context) error {
	desc := c.description()
	if desc.Expiration > ssdp.MaxExpiration {
		l.Warnf("Expiration %d exceeds the maximum of %d seconds", desc.Expiration, ssdp.MaxExpiration)
	}

	// The socket is bound up front so that a port conflict ends the
	// program instead of being retried by the supervisor.
	conn, err := mcast.Open(ctx, c.Scope, c.Port, true)
	if err != nil {
		return svcutil.AsFatalErr(err, svcutil.ExitBind)
	}
	defer conn.Close()

	svc := service.New(desc)
	svc.SetAnswerLimit(c.LimitAvg, c.LimitBurst)

	sup := suture.New("ssdp", svcutil.SpecWithInfoLogger(l))
	sup.Add(svcutil.AsService(func(ctx context.Context) error {
		err := svc.ServeConn(ctx, conn)
		if err != nil && ctx.Err() == nil {
			return svcutil.AsFatalErr(err, svcutil.ExitError)
		}
		return err
	}, "serve"))

	if c.Announce {
		ann := service.NewAnnouncer(desc, c.Scope)
		ann.SetPort(c.Port)
		sup.Add(ann)
	}

	var metrics svcutil.ServiceWithError
	if c.MetricsListen != "" {
		metrics = svcutil.AsService(func(ctx context.Context) error {
			return serveMetrics(ctx, c.MetricsListen)
		}, "metrics")
		sup.Add(metrics)
	}

	served := svc.Description()
	l.Infof("Serving %s (%s) on %v port %d", served.USN, served.ServiceType, c.Scope, c.Port)
	err = sup.Serve(ctx)
	if metrics != nil {
		warnMetricsFailure(metrics)
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// warnMetricsFailure reports a metrics listener that stopped for another
// reason than shutdown. Such a failure does not stop the responder.
func warnMetricsFailure(svc svcutil.ServiceWithError) bool {
	if err := svc.Error(); err != nil && !errors.Is(err, context.Canceled) {
		l.Warnln("Metrics listener failed:", err)
		return true
	}
	return false
}

func serveMetrics(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		srv.Close()
	}()

	err := srv.ListenAndServe()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return svcutil.NoRestartErr(err)
}
