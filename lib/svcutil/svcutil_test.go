// Copyright (C) 2026 The Syncthing Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package svcutil

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/thejerf/suture/v4"

	"github.com/syncthing/ssdp/lib/logger"
)

var errBind = errors.New("bind failed")

func TestFatalErr(t *testing.T) {
	ferr := AsFatalErr(errBind, ExitBind)
	assert.ErrorIs(t, ferr, suture.ErrTerminateSupervisorTree)
	assert.ErrorIs(t, ferr, errBind)
	assert.Equal(t, ExitBind.AsInt(), ferr.Status.AsInt())

	// Wrapping again keeps the original status.
	again := AsFatalErr(ferr, ExitError)
	assert.Same(t, ferr, again)
	assert.Equal(t, ExitBind, again.Status)
}

func TestNoRestartErr(t *testing.T) {
	assert.ErrorIs(t, NoRestartErr(nil), suture.ErrDoNotRestart)

	err := NoRestartErr(errBind)
	assert.ErrorIs(t, err, suture.ErrDoNotRestart)
	assert.ErrorIs(t, err, errBind)
	assert.Equal(t, errBind.Error(), err.Error())
}

func TestAsServiceRecordsError(t *testing.T) {
	svc := AsService(func(context.Context) error { return errBind }, "test")
	assert.NoError(t, svc.Error())
	assert.ErrorIs(t, svc.Serve(context.Background()), errBind)
	assert.ErrorIs(t, svc.Error(), errBind)
	assert.Contains(t, svc.String(), "created by test")
}

func TestFatalErrTerminatesSupervisor(t *testing.T) {
	sup := suture.New("test", SpecWithInfoLogger(logger.DefaultLogger.NewFacility("svcutil-test", "")))
	sup.Add(AsService(func(context.Context) error {
		return AsFatalErr(errBind, ExitBind)
	}, "test"))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := sup.Serve(ctx)
	var ferr *FatalErr
	if !errors.As(err, &ferr) {
		t.Fatalf("expected a FatalErr, got %v", err)
	}
	assert.Equal(t, ExitBind, ferr.Status)
}
