// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package registrysource

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/cenk/backoff"
	circuit "github.com/rubyist/circuitbreaker"
)

const tripThreshold = 5

// BreakerGetter stops calling a host after repeated failures, until its backoff elapses
type BreakerGetter struct {
	getter   Getter
	breakers map[string]*circuit.Breaker
	mu       sync.RWMutex
}

var _ Getter = (*BreakerGetter)(nil)

func NewBreakerGetter(g Getter) *BreakerGetter {
	return &BreakerGetter{
		getter:   g,
		breakers: make(map[string]*circuit.Breaker),
	}
}

func (b *BreakerGetter) breaker(host string) *circuit.Breaker {
	b.mu.RLock()
	breaker, exists := b.breakers[host]
	b.mu.RUnlock()

	if exists {
		return breaker
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if breaker, exists := b.breakers[host]; exists {
		return breaker
	}

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = 30 * time.Second
	expBackoff.MaxInterval = 5 * time.Minute
	expBackoff.Multiplier = 2.0
	expBackoff.Reset()

	breaker = circuit.NewBreakerWithOptions(&circuit.Options{
		BackOff:    expBackoff,
		ShouldTrip: circuit.ThresholdTripFunc(tripThreshold),
	})
	b.breakers[host] = breaker
	return breaker
}

func (b *BreakerGetter) Get(ctx context.Context, rawURL string) ([]byte, error) {
	host := hostOf(rawURL)
	breaker := b.breaker(host)

	if !breaker.Ready() {
		return nil, fmt.Errorf("circuit breaker open for %s: %w", host, ErrUpstreamDown)
	}

	var body []byte
	err := breaker.Call(func() error {
		var getErr error
		body, getErr = b.getter.Get(ctx, rawURL)
		return getErr
	}, 0)
	if err != nil {
		return nil, err
	}
	return body, nil
}

// States reports "open" or "closed" per host
func (b *BreakerGetter) States() map[string]string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	states := make(map[string]string, len(b.breakers))
	for host, breaker := range b.breakers {
		if breaker.Tripped() {
			states[host] = "open"
		} else {
			states[host] = "closed"
		}
	}
	return states
}

func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return rawURL
	}
	return parsed.Host
}
