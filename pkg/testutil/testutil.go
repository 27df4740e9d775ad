// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"
	"testing"

	"daml.com/x/elm-outdated/pkg/ociremote"
	"daml.com/x/elm-outdated/pkg/outdatedconfig"
	"daml.com/x/elm-outdated/pkg/utils"
	"github.com/google/go-containerregistry/pkg/registry"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"oras.land/oras-go/v2/registry/remote/auth"
)

// TestdataPath gives absolute path within the common 'testdata'
func TestdataPath(t *testing.T, path ...string) string {
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)

	p := []string{filepath.Dir(file), "testdata"}
	p = append(p, path...)
	return filepath.Join(p...)
}

func GetRemote(registry *httptest.Server) *ociremote.Remote {
	prefix := "http://"
	insecure := strings.HasPrefix(registry.URL, prefix)
	if !insecure {
		prefix = "https://"
	}
	return ociremote.NewWithCustomClient(strings.TrimPrefix(registry.URL, prefix), &auth.Client{Client: registry.Client()}, insecure)
}

// StartRegistry runs an in-memory OCI registry and points the environment at repo within it
func StartRegistry(t *testing.T, repo string) (client *ociremote.Remote, reg *httptest.Server) {
	reg = httptest.NewServer(registry.New())
	t.Cleanup(func() { reg.Close() })
	regUrl := strings.TrimPrefix(reg.URL, "http://")

	t.Setenv(outdatedconfig.RegistryEnvVar, ociremote.Scheme+regUrl+"/"+repo)
	t.Setenv(outdatedconfig.RegistryAuthConfigPathEnvVar, TestdataPath(t, "empty-docker-config.json"))
	t.Setenv(outdatedconfig.AllowInsecureRegistryEnvVar, "true")

	return GetRemote(reg), reg
}

// ElmRegistry imitates the all-packages endpoint of package.elm-lang.org
type ElmRegistry struct {
	*httptest.Server
	// keyed by elm-package-version, e.g. "0.19"
	Payloads map[string]string
	status   atomic.Int32
	requests atomic.Int32
}

// SetStatus makes every following request fail with status, or succeed again with 200
func (e *ElmRegistry) SetStatus(status int) {
	e.status.Store(int32(status))
}

func (e *ElmRegistry) Requests() int {
	return int(e.requests.Load())
}

// StartElmRegistry serves payloads and points the environment at the server
func StartElmRegistry(t *testing.T, payloads map[string]string) *ElmRegistry {
	e := &ElmRegistry{Payloads: payloads}
	e.SetStatus(http.StatusOK)
	e.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		e.requests.Add(1)
		if r.URL.Path != "/all-packages" {
			http.NotFound(w, r)
			return
		}
		if status := int(e.status.Load()); status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		payload, ok := e.Payloads[r.URL.Query().Get("elm-package-version")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(payload))
	}))
	t.Cleanup(e.Close)

	t.Setenv(outdatedconfig.RegistryEnvVar, e.URL)
	return e
}

// ElmPayloads reads the registry snapshots under testdata/registry, keyed by elm-package-version
func ElmPayloads(t *testing.T) map[string]string {
	payloads := map[string]string{}
	for _, v := range []string{"0.19", "0.18"} {
		data, err := os.ReadFile(TestdataPath(t, "registry", "all-packages-"+v+".json"))
		require.NoError(t, err)
		payloads[v] = string(data)
	}
	return payloads
}

// ProjectPath is the path of a sample elm project under testdata/projects
func ProjectPath(t *testing.T, name string) string {
	return TestdataPath(t, "projects", name)
}

type CommonSetupSuite struct {
	suite.Suite
}

func (suite *CommonSetupSuite) SetupTest() {
	// set ELM_OUTDATED_HOME to a randomized temp dir before every test,
	// otherwise, the cache would be shared across tests.
	tmpHome, deleteFn, err := utils.MkdirTemp("", "")
	suite.Require().NoError(err)
	suite.T().Setenv(outdatedconfig.HomeEnvVar, tmpHome)
	suite.T().Setenv(outdatedconfig.NetrcPathEnvVar, "")
	suite.T().Setenv(outdatedconfig.LogLevelEnvVar, "")
	suite.T().Cleanup(func() {
		_ = deleteFn()
	})
}

func Context(t *testing.T) context.Context {
	ctx, stopFn := context.WithCancel(context.Background())
	t.Cleanup(stopFn)
	return ctx
}
