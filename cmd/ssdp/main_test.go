// Copyright (C) 2026 The Syncthing Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thejerf/suture/v4"

	"github.com/syncthing/ssdp/lib/logger"
	"github.com/syncthing/ssdp/lib/ssdp"
	"github.com/syncthing/ssdp/lib/svcutil"
)

func parse(t *testing.T, args ...string) (*CLI, *kong.Context, error) {
	t.Helper()
	var cli CLI
	parser, err := kong.New(&cli, kong.Name("ssdp"), kong.Exit(func(int) { t.Fatal("unexpected exit") }))
	require.NoError(t, err)
	kctx, err := parser.Parse(args)
	return &cli, kctx, err
}

func TestDiscoverDefaults(t *testing.T) {
	cli, kctx, err := parse(t, "discover")
	require.NoError(t, err)
	assert.Equal(t, "discover", kctx.Command())
	assert.Equal(t, ssdp.GlobalV4, cli.Discover.Scope)
	assert.Equal(t, ssdp.SearchAll, cli.Discover.Target)
	assert.Equal(t, 5*time.Second, cli.Discover.Timeout)
	assert.Equal(t, ssdp.Port, cli.Discover.Port)
	assert.Empty(t, cli.Discover.ID)
}

func TestDiscoverFlags(t *testing.T) {
	cli, _, err := parse(t, "discover", "--scope", "v6-link-local", "--target", "some:special:service", "--timeout", "250ms", "--id", "uuid:x")
	require.NoError(t, err)
	assert.Equal(t, ssdp.LinkLocalV6, cli.Discover.Scope)
	assert.Equal(t, "some:special:service", cli.Discover.Target)
	assert.Equal(t, 250*time.Millisecond, cli.Discover.Timeout)
	assert.Equal(t, "uuid:x", cli.Discover.ID)
}

func TestDiscoverUnknownScope(t *testing.T) {
	_, _, err := parse(t, "discover", "--scope", "mars")
	assert.Error(t, err)
}

func TestServeEnvironment(t *testing.T) {
	t.Setenv("SSDP_USN", "uuid:some-service-uuid")
	t.Setenv("SSDP_TYPE", "some:special:service")
	t.Setenv("SSDP_SCOPE", "loopback")
	t.Setenv("SSDP_LIMIT_AVG", "2.5")

	cli, kctx, err := parse(t, "serve", "--location", "https://foo/bar")
	require.NoError(t, err)
	assert.Equal(t, "serve", kctx.Command())
	assert.Equal(t, ssdp.Loopback, cli.Serve.Scope)
	assert.Equal(t, 2.5, cli.Serve.LimitAvg)
	assert.False(t, cli.Serve.Announce)
	assert.Equal(t, ssdp.ServiceDescription{
		USN:         "uuid:some-service-uuid",
		ServiceType: "some:special:service",
		Expiration:  1800,
		Location:    "https://foo/bar",
	}, cli.Serve.description())
}

func TestServeRequiresIdentity(t *testing.T) {
	_, _, err := parse(t, "serve")
	assert.Error(t, err)
}

func TestPrintServices(t *testing.T) {
	var buf bytes.Buffer
	err := printServices(&buf, []ssdp.ServiceDescription{{
		USN:         "uuid:some-service-uuid",
		ServiceType: "some:special:service",
		Expiration:  100,
		Location:    "<some:special:service><https://foo/bar>",
	}})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "USN"))
	assert.Equal(t, []string{"uuid:some-service-uuid", "some:special:service", "100", "<some:special:service><https://foo/bar>"}, strings.Fields(lines[1]))
}

func TestUsageListsFacilities(t *testing.T) {
	text := usageText(logger.DefaultLogger.Facilities())
	for _, name := range []string{"main", "client", "service", "mcast", "sync"} {
		assert.Contains(t, text, `"`+name+`"`)
	}
	assert.Contains(t, text, "SSDPTRACE")
	assert.Less(t, strings.Index(text, `"client"`), strings.Index(text, `"service"`))
}

func TestMetricsListenFailure(t *testing.T) {
	svc := svcutil.AsService(func(ctx context.Context) error {
		return serveMetrics(ctx, "127.0.0.1:-1")
	}, "metrics")

	err := svc.Serve(context.Background())
	assert.ErrorIs(t, err, suture.ErrDoNotRestart)
	assert.True(t, warnMetricsFailure(svc))
}

func TestMetricsStopOnShutdown(t *testing.T) {
	svc := svcutil.AsService(func(ctx context.Context) error {
		return serveMetrics(ctx, "127.0.0.1:0")
	}, "metrics")

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	assert.ErrorIs(t, svc.Serve(ctx), context.Canceled)
	assert.False(t, warnMetricsFailure(svc))
}
