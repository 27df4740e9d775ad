// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package ociremote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"daml.com/x/elm-outdated/pkg/outdatedconfig"
	"oras.land/oras-go/v2/registry/remote"
	"oras.land/oras-go/v2/registry/remote/auth"
	"oras.land/oras-go/v2/registry/remote/credentials"
	"oras.land/oras-go/v2/registry/remote/errcode"
	"oras.land/oras-go/v2/registry/remote/retry"
)

const Scheme = "oci://"

type Remote struct {
	Registry string
	client   *auth.Client

	// Use http instead of https.
	// This is merely a hint to consumers of Remote, and not something that is enforced by Client
	Insecure bool
}

func (r *Remote) Repo(repoName string) (repo *remote.Repository, err error) {
	repo, err = remote.NewRepository(fmt.Sprintf("%s/%s", r.Registry, repoName))
	if err != nil {
		return nil, err
	}

	repo.Client = r
	repo.PlainHTTP = r.Insecure
	return
}

// Tags lists the tags of repoName; found is false when the repository does not exist
func (r *Remote) Tags(ctx context.Context, repoName string) (tags []string, found bool, err error) {
	repo, err := r.Repo(repoName)
	if err != nil {
		return nil, false, err
	}

	err = repo.Tags(ctx, "", func(page []string) error {
		tags = append(tags, page...)
		return nil
	})
	if isNotFound(err) {
		// repo doesn't even exist...
		return nil, false, nil
	} else if err != nil {
		return nil, false, err
	}
	return tags, true, nil
}

func isNotFound(err error) bool {
	var ec errcode.Error
	if errors.As(err, &ec) && ec.Code == errcode.ErrorCodeNameUnknown {
		return true
	}
	var errResp *errcode.ErrorResponse
	return errors.As(err, &errResp) && errResp.StatusCode == http.StatusNotFound
}

func NewWithCustomClient(registry string, client *auth.Client, insecure bool) *Remote {
	return &Remote{
		Registry: registry,
		client:   client,
		Insecure: insecure,
	}
}

func New(registry string, authConfigPath string, insecure bool) (*Remote, error) {
	client := &auth.Client{
		Client: retry.DefaultClient,
		Cache:  auth.NewCache(),
	}
	client.SetUserAgent(outdatedconfig.GetUserAgent())

	var (
		store credentials.Store
		err   error
	)
	if authConfigPath != "" {
		slog.Info("using custom auth for registry", "path", authConfigPath)
		if store, err = credentials.NewStore(authConfigPath, credentials.StoreOptions{}); err != nil {
			return nil, err
		}
	} else if store, err = credentials.NewStoreFromDocker(credentials.StoreOptions{}); err != nil {
		slog.Debug("failed to determine docker config to default to. Requests to registry will be unauthenticated", "err", err.Error())
		store = nil
	}
	if store != nil {
		client.Credential = readOnly(store)
	}

	return NewWithCustomClient(registry, client, insecure), nil
}

// readOnly looks credentials up in store without ever writing tokens back to it
func readOnly(store credentials.Store) auth.CredentialFunc {
	return func(ctx context.Context, hostport string) (auth.Credential, error) {
		return store.Get(ctx, credentials.ServerAddressFromHostname(hostport))
	}
}

var _ remote.Client = (*Remote)(nil)

func (r *Remote) Do(req *http.Request) (*http.Response, error) {
	slog.Debug("OCI request", "method", req.Method, "url", req.URL.String())
	return r.client.Do(req)
}

// Reference is an oci://host[:port]/repo location
type Reference struct {
	Registry string
	Repo     string
}

func (r Reference) String() string {
	return Scheme + r.Registry + "/" + r.Repo
}

func IsReference(s string) bool {
	return strings.HasPrefix(s, Scheme)
}

func ParseReference(s string) (Reference, error) {
	rest, ok := strings.CutPrefix(s, Scheme)
	if !ok {
		return Reference{}, fmt.Errorf("invalid OCI reference %q: expected %shost/repository", s, Scheme)
	}
	host, repo, ok := strings.Cut(strings.TrimSuffix(rest, "/"), "/")
	if !ok || host == "" || repo == "" {
		return Reference{}, fmt.Errorf("invalid OCI reference %q: expected %shost/repository", s, Scheme)
	}
	return Reference{Registry: host, Repo: repo}, nil
}

// NewFromConfig connects to the registry named by ref, with the configured auth file
func NewFromConfig(config *outdatedconfig.Config, ref Reference) (*Remote, error) {
	return New(ref.Registry, config.RegistryAuthPath, config.Insecure)
}
