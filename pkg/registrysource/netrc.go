// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package registrysource

import (
	"encoding/base64"
	"log/slog"
	"net/url"
	"os"

	"github.com/jdx/go-netrc"
)

// NetrcAuth returns an auth func sending basic credentials for hosts listed in the netrc file.
// A missing or unreadable file means no authentication.
func NetrcAuth(path string) func(url string) (headerName, headerValue string) {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	n, err := netrc.Parse(path)
	if err != nil {
		slog.Warn("ignoring unreadable netrc file", "path", path, "err", err.Error())
		return nil
	}

	return func(rawURL string) (string, string) {
		u, err := url.Parse(rawURL)
		if err != nil {
			return "", ""
		}
		machine := n.Machine(u.Hostname())
		if machine == nil {
			return "", ""
		}
		login, password := machine.Get("login"), machine.Get("password")
		if login == "" && password == "" {
			return "", ""
		}
		token := base64.StdEncoding.EncodeToString([]byte(login + ":" + password))
		return "Authorization", "Basic " + token
	}
}
