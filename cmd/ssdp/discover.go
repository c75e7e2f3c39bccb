// Copyright (C) 2026 The Syncthing Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"

	"github.com/syncthing/ssdp/lib/client"
	"github.com/syncthing/ssdp/lib/ssdp"
)

type discoverCmd struct {
	ID      string        `help:"Requester identifier sent in the S header (default: random uuid)" env:"SSDP_ID"`
	Scope   ssdp.Scope    `help:"Multicast scope (v4, v6-link-local, v6-site-local, loopback)" default:"v4" env:"SSDP_SCOPE"`
	Target  string        `help:"Search target" default:"ssdp:all" env:"SSDP_TARGET"`
	Timeout time.Duration `help:"How long to collect answers" default:"5s" env:"SSDP_TIMEOUT"`
	Port    int           `help:"Destination port" default:"1900" env:"SSDP_PORT"`
}

func (c *discoverCmd) Run(ctx context.Context) error {
	id := c.ID
	if id == "" {
		id = "uuid:" + uuid.NewString()
	}

	cl := client.New()
	cl.SetTimeout(c.Timeout)
	cl.SetPort(c.Port)

	l.Debugf("Searching for %q on %v as %s", c.Target, c.Scope, id)
	err := cl.Discover(ctx, id, c.Scope, c.Target)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	// Whatever was found before an interrupt is still printed.
	return printServices(os.Stdout, cl.Services())
}

func printServices(w io.Writer, services []ssdp.ServiceDescription) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "USN\tSERVICE TYPE\tEXPIRATION\tLOCATION")
	for _, s := range services {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", s.USN, s.ServiceType, s.Expiration, s.Location)
	}
	return tw.Flush()
}
