// Copyright (C) 2026 The Syncthing Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package service

import (
	"net"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

// Number of source addresses we keep a token bucket for.
const limiterCacheSize = 10240

// answerLimiter rate limits answers per source IP. A nil *answerLimiter
// allows everything.
type answerLimiter struct {
	limit   rate.Limit
	burst   int
	buckets *lru.Cache[string, *rate.Limiter]
}

func newAnswerLimiter(avg float64, burst int) *answerLimiter {
	if avg <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	buckets, err := lru.New[string, *rate.Limiter](limiterCacheSize)
	if err != nil {
		// Only happens for a non-positive size.
		panic(err)
	}
	return &answerLimiter{
		limit:   rate.Limit(avg),
		burst:   burst,
		buckets: buckets,
	}
}

func (a *answerLimiter) allow(src net.Addr) bool {
	if a == nil {
		return true
	}

	key := src.String()
	if udp, ok := src.(*net.UDPAddr); ok {
		key = udp.IP.String()
	}

	bkt, ok := a.buckets.Get(key)
	if !ok {
		bkt = rate.NewLimiter(a.limit, a.burst)
		a.buckets.Add(key, bkt)
	}
	return bkt.Allow()
}
