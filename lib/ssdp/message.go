// Copyright (C) 2026 The Syncthing Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package ssdp

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	MethodSearch = "M-SEARCH"
	MethodNotify = "NOTIFY"

	// SearchAll is the search target matched by every service.
	SearchAll = "ssdp:all"
	// Discover is the MAN header value of a search, including the quotes.
	Discover = `"ssdp:discover"`

	NTSAlive  = "ssdp:alive"
	NTSByeBye = "ssdp:byebye"

	// MaxHeaders is the number of header lines a parsed message may carry.
	MaxHeaders = 64
)

var (
	ErrMalformed        = errors.New("malformed message")
	ErrUnexpectedStatus = errors.New("unexpected status")
	ErrUnexpectedMethod = errors.New("unexpected method")
	ErrBadMan           = errors.New("bad MAN header")
	ErrMissingHeader    = errors.New("missing header")
)

// Header is a single header line. Names are kept as received.
type Header struct {
	Name  string
	Value string
}

// BuildSearch returns an M-SEARCH request for searchTarget, sent to the
// group of the given scope. The header order is part of the wire format:
// responders read the headers by position.
func BuildSearch(requesterID, searchTarget string, scope Scope) []byte {
	return build("M-SEARCH * HTTP/1.1", []Header{
		{"S", requesterID},
		{"Host", scope.HostPort(Port)},
		{"MAN", Discover},
		{"ST", searchTarget},
		{"MX", "1"},
	})
}

// BuildSearchAnswer returns the unicast answer a service sends to the
// requester identified by requesterID.
func BuildSearchAnswer(desc ServiceDescription, requesterID string) []byte {
	return build("HTTP/1.1 200 OK", []Header{
		{"S", requesterID},
		{"Ext", ""},
		{"Cache-Control", `no-cache="Ext", max-age=` + strconv.FormatUint(uint64(desc.Expiration), 10)},
		{"ST", desc.ServiceType},
		{"USN", desc.USN},
		{"AL", "<" + desc.ServiceType + "><" + desc.Location + ">"},
	})
}

// BuildAlive returns the ssdp:alive NOTIFY announcing desc on the scope.
func BuildAlive(desc ServiceDescription, scope Scope) []byte {
	return build("NOTIFY * HTTP/1.1", []Header{
		{"Host", scope.HostPort(Port)},
		{"NT", desc.ServiceType},
		{"NTS", NTSAlive},
		{"USN", desc.USN},
		{"AL", "<" + desc.USN + "><" + desc.Location + ">"},
		{"Cache-Control", "max-age = " + strconv.FormatUint(uint64(desc.Expiration), 10)},
	})
}

// BuildByeBye returns the ssdp:byebye NOTIFY withdrawing desc from the
// scope.
func BuildByeBye(desc ServiceDescription, scope Scope) []byte {
	return build("NOTIFY * HTTP/1.1", []Header{
		{"Host", scope.HostPort(Port)},
		{"NT", desc.ServiceType},
		{"NTS", NTSByeBye},
		{"USN", desc.USN},
	})
}

// Header values must stay on their own line whatever the fields contain.
var headerNewlineToSpace = strings.NewReplacer("\n", " ", "\r", " ")

func build(startLine string, headers []Header) []byte {
	var buf bytes.Buffer
	buf.WriteString(startLine)
	buf.WriteString("\r\n")
	for _, h := range headers {
		buf.WriteString(h.Name)
		buf.WriteString(": ")
		headerNewlineToSpace.WriteString(&buf, h.Value)
		buf.WriteString("\r\n")
	}
	buf.WriteString("\r\n")
	return buf.Bytes()
}

// SearchAnswer holds the header values a client needs from an answer.
type SearchAnswer struct {
	ServiceType string
	USN         string
	AL          string
}

// ParseSearchAnswer parses data as the answer to a search. The status must
// be 200 and the ST, USN and AL headers must be the fourth, fifth and sixth
// header lines. A header with another name in one of those slots counts as
// missing.
func ParseSearchAnswer(data []byte) (SearchAnswer, error) {
	msg, err := ParseMessage(data)
	if err != nil {
		return SearchAnswer{}, err
	}
	if !msg.IsResponse() {
		return SearchAnswer{}, fmt.Errorf("%w: request %s", ErrUnexpectedStatus, msg.Method)
	}
	if msg.StatusCode != 200 {
		return SearchAnswer{}, fmt.Errorf("%w: %d", ErrUnexpectedStatus, msg.StatusCode)
	}

	st, err := msg.named(3, "ST")
	if err != nil {
		return SearchAnswer{}, err
	}
	usn, err := msg.named(4, "USN")
	if err != nil {
		return SearchAnswer{}, err
	}
	al, err := msg.named(5, "AL")
	if err != nil {
		return SearchAnswer{}, err
	}

	return SearchAnswer{
		ServiceType: st,
		USN:         usn,
		AL:          al,
	}, nil
}

// SearchRequest holds the header values a service needs from a search.
type SearchRequest struct {
	Requester string
	Target    string
}

// ParseSearch parses data as an M-SEARCH request. The requester is the
// value of the first header line, the MAN value is the third and the
// search target the fourth; their names are not checked.
func ParseSearch(data []byte) (SearchRequest, error) {
	msg, err := ParseMessage(data)
	if err != nil {
		return SearchRequest{}, err
	}
	if msg.IsResponse() {
		return SearchRequest{}, fmt.Errorf("%w: response %d", ErrUnexpectedMethod, msg.StatusCode)
	}
	if msg.Method != MethodSearch {
		return SearchRequest{}, fmt.Errorf("%w: %s", ErrUnexpectedMethod, msg.Method)
	}

	man, ok := msg.Slot(2)
	if !ok || man.Value != Discover {
		return SearchRequest{}, ErrBadMan
	}
	st, ok := msg.Slot(3)
	if !ok {
		return SearchRequest{}, fmt.Errorf("%w: ST", ErrMissingHeader)
	}
	s, ok := msg.Slot(0)
	if !ok {
		return SearchRequest{}, fmt.Errorf("%w: S", ErrMissingHeader)
	}

	return SearchRequest{
		Requester: s.Value,
		Target:    st.Value,
	}, nil
}
