// Copyright (C) 2026 The Syncthing Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package ssdp

import (
	"bufio"
	"bytes"
	"fmt"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"
)

// A Message is an HTTP-over-UDP message with its headers in wire order.
// Either Method/Target (requests) or StatusCode/Reason (responses) are set.
type Message struct {
	Method     string
	Target     string
	StatusCode int
	Reason     string
	Proto      string
	Headers    []Header
}

// IsResponse returns true if the message has a status line.
func (m *Message) IsResponse() bool {
	return m.StatusCode != 0
}

// Slot returns the header at position i.
func (m *Message) Slot(i int) (Header, bool) {
	if i < 0 || i >= len(m.Headers) {
		return Header{}, false
	}
	return m.Headers[i], true
}

// Header returns the value of the first header with the given name,
// compared case insensitively, regardless of its position.
func (m *Message) Header(name string) (string, bool) {
	for _, h := range m.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value, true
		}
	}
	return "", false
}

func (m *Message) named(i int, name string) (string, error) {
	h, ok := m.Slot(i)
	if !ok || h.Name != name {
		return "", fmt.Errorf("%w: %s", ErrMissingHeader, name)
	}
	return h.Value, nil
}

// ParseMessage parses the start line and header block of data. The header
// block must be terminated by an empty line; anything after it is ignored.
func ParseMessage(data []byte) (*Message, error) {
	r := textproto.NewReader(bufio.NewReader(bytes.NewReader(data)))

	line, err := r.ReadLine()
	if err != nil {
		return nil, fmt.Errorf("%w: reading start line: %v", ErrMalformed, err)
	}

	var msg Message
	if strings.HasPrefix(line, "HTTP/") {
		err = parseStatusLine(line, &msg)
	} else {
		err = parseRequestLine(line, &msg)
	}
	if err != nil {
		return nil, err
	}

	for {
		line, err := r.ReadLine()
		if err != nil {
			return nil, fmt.Errorf("%w: unterminated header block: %v", ErrMalformed, err)
		}
		if line == "" {
			break
		}
		if len(msg.Headers) == MaxHeaders {
			return nil, fmt.Errorf("%w: more than %d headers", ErrMalformed, MaxHeaders)
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok || !validHeaderName(name) {
			return nil, fmt.Errorf("%w: header line %q", ErrMalformed, line)
		}
		msg.Headers = append(msg.Headers, Header{
			Name:  name,
			Value: strings.TrimSpace(value),
		})
	}

	return &msg, nil
}

func parseStatusLine(line string, msg *Message) error {
	proto, rest, _ := strings.Cut(line, " ")
	code, reason, _ := strings.Cut(rest, " ")
	if _, _, ok := http.ParseHTTPVersion(proto); !ok {
		return fmt.Errorf("%w: status line %q", ErrMalformed, line)
	}
	if len(code) != 3 {
		return fmt.Errorf("%w: status line %q", ErrMalformed, line)
	}
	n, err := strconv.Atoi(code)
	if err != nil || n < 100 {
		return fmt.Errorf("%w: status line %q", ErrMalformed, line)
	}
	msg.Proto = proto
	msg.StatusCode = n
	msg.Reason = reason
	return nil
}

func parseRequestLine(line string, msg *Message) error {
	parts := strings.Split(line, " ")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
		return fmt.Errorf("%w: request line %q", ErrMalformed, line)
	}
	if _, _, ok := http.ParseHTTPVersion(parts[2]); !ok {
		return fmt.Errorf("%w: request line %q", ErrMalformed, line)
	}
	if !validToken(parts[0]) {
		return fmt.Errorf("%w: method %q", ErrMalformed, parts[0])
	}
	msg.Method = parts[0]
	msg.Target = parts[1]
	msg.Proto = parts[2]
	return nil
}

func validHeaderName(name string) bool {
	return name != "" && validToken(name)
}

func validToken(s string) bool {
	for _, r := range s {
		if r <= ' ' || r >= 0x7f || strings.ContainsRune(`"(),/:;<=>?@[\]{}`, r) {
			return false
		}
	}
	return true
}
