// Copyright (C) 2026 The Syncthing Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package ssdp

// MaxExpiration is the largest max-age, in seconds, a service should
// advertise (one year, per RFC 2616). The codec does not enforce it.
const MaxExpiration = 31536000

// A ServiceDescription is the unit of discovery. Services are identified by
// their USN alone; the other fields may change between observations.
type ServiceDescription struct {
	// USN is the unique service name, often a UUID such as
	// "uuid:83760048-2d32-4e48-854f-f63a8fa9fd09".
	USN string
	// ServiceType is what clients search for, e.g. "upnp:clockradio".
	ServiceType string
	// Expiration is the cache max-age in seconds.
	Expiration uint32
	// Location is where the service can be reached, nominally a URL.
	Location string
}
