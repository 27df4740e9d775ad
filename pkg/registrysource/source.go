// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package registrysource

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"daml.com/x/elm-outdated/pkg/ociremote"
	"daml.com/x/elm-outdated/pkg/outdatedconfig"
	"daml.com/x/elm-outdated/pkg/outdatederrors"
	"daml.com/x/elm-outdated/pkg/registry"
	"daml.com/x/elm-outdated/pkg/schema"
)

// Source supplies the raw registry payload for a schema
type Source interface {
	Fetch(ctx context.Context, s schema.Schema) ([]byte, error)
	String() string
}

// New picks a Source for the configured registry location, cached on disk unless disabled
func New(config *outdatedconfig.Config) (Source, error) {
	src, err := newUncached(config)
	if err != nil {
		return nil, err
	}
	if _, local := src.(*FileSource); local || config.NoCache {
		return src, nil
	}
	return NewCachedSource(src, config.CachePath, config.CacheLockPath, config.CacheTTL), nil
}

func newUncached(config *outdatedconfig.Config) (Source, error) {
	location := config.Registry
	switch {
	case ociremote.IsReference(location):
		ref, err := ociremote.ParseReference(location)
		if err != nil {
			return nil, err
		}
		remote, err := ociremote.NewFromConfig(config, ref)
		if err != nil {
			return nil, err
		}
		return NewOCISource(remote, ref.Repo), nil

	case strings.HasPrefix(location, "https://"), strings.HasPrefix(location, "http://"):
		fetcher := NewFetcher(
			WithUserAgent(outdatedconfig.GetUserAgent()),
			WithTimeout(config.Timeout),
			WithAuthFunc(NetrcAuth(config.NetrcPath)),
		)
		return NewHTTPSource(location, NewBreakerGetter(fetcher)), nil

	case location == "":
		return nil, errors.New("no registry configured")

	default:
		return NewFileSource(strings.TrimPrefix(location, "file://")), nil
	}
}

// Load fetches the payload for s from src and builds the index.
// Failures come back as coded RunErrors.
func Load(ctx context.Context, src Source, s schema.Schema) (*registry.Index, error) {
	data, err := src.Fetch(ctx, s)
	if err != nil {
		if errors.Is(err, registry.ErrMalformedPayload) {
			return nil, outdatederrors.NewMalformedRegistryError(err)
		}
		return nil, outdatederrors.NewRegistryUnavailableError(fmt.Errorf("reading %s registry from %s: %w", s.ElmVersion(), src, err))
	}

	idx, err := registry.Load(data)
	if err != nil {
		return nil, outdatederrors.NewMalformedRegistryError(fmt.Errorf("%s: %w", src, err))
	}
	slog.Debug("registry loaded", "source", src.String(), "schema", s.ElmVersion(), "packages", idx.Len())
	return idx, nil
}
