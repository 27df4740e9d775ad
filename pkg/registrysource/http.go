// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package registrysource

import (
	"context"
	"net/url"
	"strings"

	"daml.com/x/elm-outdated/pkg/schema"
)

const allPackagesPath = "/all-packages"

// HTTPSource reads the all-packages endpoint of a package.elm-lang.org compatible server
type HTTPSource struct {
	baseURL string
	getter  Getter
}

var _ Source = (*HTTPSource)(nil)

func NewHTTPSource(baseURL string, getter Getter) *HTTPSource {
	return &HTTPSource{baseURL: strings.TrimSuffix(baseURL, "/"), getter: getter}
}

// URL is the endpoint listing every published version for s
func (h *HTTPSource) URL(s schema.Schema) string {
	q := url.Values{}
	q.Set("elm-package-version", s.ElmVersion())
	return h.baseURL + allPackagesPath + "?" + q.Encode()
}

func (h *HTTPSource) Fetch(ctx context.Context, s schema.Schema) ([]byte, error) {
	return h.getter.Get(ctx, h.URL(s))
}

func (h *HTTPSource) String() string {
	return h.baseURL
}
