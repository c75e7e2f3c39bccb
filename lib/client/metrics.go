// Copyright (C) 2026 The Syncthing Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package client

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricDiscoveriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ssdp",
		Subsystem: "client",
		Name:      "discoveries_total",
		Help:      "Total number of discovery runs, by outcome",
	}, []string{"result"})
	metricResponsesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ssdp",
		Subsystem: "client",
		Name:      "responses_total",
		Help:      "Total number of datagrams received while discovering, by outcome",
	}, []string{"result"})
)

const (
	resultOK        = "ok"
	resultError     = "error"
	resultCancelled = "cancelled"
	resultNew       = "new"
	resultUpdated   = "updated"
	resultRejected  = "rejected"
)
