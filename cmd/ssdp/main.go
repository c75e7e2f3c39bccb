// Copyright (C) 2026 The Syncthing Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Command ssdp searches for SSDP services on the local network, or
// advertises one and answers searches for it.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/syncthing/ssdp/lib/logger"
	"github.com/syncthing/ssdp/lib/svcutil"
)

const extraUsage = `Simple Service Discovery Protocol client and service.

The following environment variables are interpreted by ssdp:

 SSDPTRACE          A comma separated string of facilities to trace, or "all".
                    The valid facility strings:
%s
 SSDPLOCKTHRESHOLD  Log mutexes held for longer than this many milliseconds
                    when the "sync" facility is traced. Default 100.`

type CLI struct {
	Discover discoverCmd `cmd:"" help:"Search for services and list the ones that answer"`
	Serve    serveCmd    `cmd:"" help:"Answer searches for a service until interrupted"`
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("ssdp"),
		kong.Description(usageText(logger.DefaultLogger.Facilities())),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	err := kctx.Run()
	var ferr *svcutil.FatalErr
	if errors.As(err, &ferr) {
		l.Warnln(ferr.Err)
		cancel()
		os.Exit(ferr.Status.AsInt())
	}
	kctx.FatalIfErrorf(err)
}

// usageText lists the known debug facilities, sorted by name.
func usageText(facilities map[string]string) string {
	names := make([]string, 0, len(facilities))
	for name := range facilities {
		names = append(names, name)
	}
	slices.Sort(names)

	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "                    - %-10s (%s)\n", fmt.Sprintf("%q", name), facilities[name])
	}
	return fmt.Sprintf(extraUsage, b.String())
}
