// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package registrysource

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statusServer(t *testing.T, statuses ...int) (*httptest.Server, *atomic.Int32) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(calls.Add(1))
		status := statuses[min(n, len(statuses))-1]
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		_, _ = w.Write([]byte(`{"elm/core": ["1.0.0"]}`))
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

func TestFetcherGet(t *testing.T) {
	tests := []struct {
		name     string
		statuses []int
		calls    int32
		err      error
	}{
		{name: "ok", statuses: []int{200}, calls: 1},
		{name: "retries rate limiting", statuses: []int{429, 429, 200}, calls: 3},
		{name: "retries server errors", statuses: []int{503, 200}, calls: 2},
		{name: "gives up after max retries", statuses: []int{500}, calls: 4, err: ErrUpstreamDown},
		{name: "not found is final", statuses: []int{404}, calls: 1, err: ErrNotFound},
		{name: "client errors are final", statuses: []int{400}, calls: 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server, calls := statusServer(t, tc.statuses...)
			f := NewFetcher(WithBaseDelay(time.Millisecond))

			body, err := f.Get(context.Background(), server.URL+"/all-packages")
			assert.Equal(t, tc.calls, calls.Load())
			if tc.statuses[len(tc.statuses)-1] == http.StatusOK {
				require.NoError(t, err)
				assert.JSONEq(t, `{"elm/core": ["1.0.0"]}`, string(body))
				return
			}
			require.Error(t, err)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
			}
		})
	}
}

func TestFetcherHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "elm-outdated/test", r.UserAgent())
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(server.Close)

	f := NewFetcher(
		WithUserAgent("elm-outdated/test"),
		WithAuthFunc(func(string) (string, string) { return "Authorization", "Bearer token" }),
	)
	_, err := f.Get(context.Background(), server.URL)
	require.NoError(t, err)
}

func TestFetcherContextCancelledDuringBackoff(t *testing.T) {
	server, _ := statusServer(t, 503)
	f := NewFetcher(WithBaseDelay(time.Hour))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := f.Get(ctx, server.URL)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

type failingGetter struct {
	calls int
}

func (f *failingGetter) Get(context.Context, string) ([]byte, error) {
	f.calls++
	return nil, errors.New("connection refused")
}

func TestBreakerGetterTrips(t *testing.T) {
	inner := &failingGetter{}
	b := NewBreakerGetter(inner)
	url := "https://package.elm-lang.org/all-packages"

	for range tripThreshold {
		_, err := b.Get(context.Background(), url)
		assert.ErrorContains(t, err, "connection refused")
	}
	assert.Equal(t, map[string]string{"package.elm-lang.org": "open"}, b.States())

	_, err := b.Get(context.Background(), url)
	assert.ErrorIs(t, err, ErrUpstreamDown)
	assert.Equal(t, tripThreshold, inner.calls, "an open breaker does not call through")
}

func TestFetchersShareDNSCache(t *testing.T) {
	NewFetcher()
	before := runtime.NumGoroutine()
	for range 20 {
		NewFetcher()
	}
	assert.LessOrEqual(t, runtime.NumGoroutine(), before)
	assert.Same(t, sharedResolver(), sharedResolver())
}

func TestNetrcAuth(t *testing.T) {
	authFn := NetrcAuth(filepath.Join("testdata", "netrc"))
	require.NotNil(t, authFn)

	name, value := authFn("https://registry.example.com/all-packages")
	assert.Equal(t, "Authorization", name)
	assert.Equal(t, "Basic bWVlcDptZWVwIQ==", value)

	name, _ = authFn("https://package.elm-lang.org/all-packages")
	assert.Empty(t, name)

	assert.Nil(t, NetrcAuth(filepath.Join(t.TempDir(), "missing")))
	assert.Nil(t, NetrcAuth(""))
}
