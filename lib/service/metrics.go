// Copyright (C) 2026 The Syncthing Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricSearchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ssdp",
		Subsystem: "service",
		Name:      "searches_total",
		Help:      "Total number of datagrams received by the responder, by outcome",
	}, []string{"result"})
	metricAnnouncementsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ssdp",
		Subsystem: "service",
		Name:      "announcements_total",
		Help:      "Total number of NOTIFY messages sent, by kind",
	}, []string{"kind"})
)

const (
	resultAnswered    = "answered"
	resultRejected    = "rejected"
	resultOtherTarget = "other_target"
	resultLimited     = "limited"
)
