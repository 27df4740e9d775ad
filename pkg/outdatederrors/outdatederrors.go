// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package outdatederrors

import (
	"encoding/json"
	"errors"

	"daml.com/x/elm-outdated/pkg/manifest"
	"daml.com/x/elm-outdated/pkg/registry"
)

const (
	ManifestNotFound    = "MANIFEST_NOT_FOUND"
	MalformedManifest   = "MALFORMED_MANIFEST"
	RegistryUnavailable = "REGISTRY_UNAVAILABLE"
	MalformedRegistry   = "MALFORMED_REGISTRY"
	UnknownError        = "UNKNOWN_ERROR"
)

// RunError is a fatal condition that stops a check before any resolution happens
type RunError struct {
	Code  string
	Cause error
}

func (r *RunError) Error() string {
	if r.Cause != nil {
		return r.Code + ": " + r.Cause.Error()
	}
	return r.Code
}

type serialized struct {
	Code  string `json:"code" yaml:"code"`
	Cause string `json:"cause" yaml:"cause"`
}

func (r *RunError) serialize() serialized {
	var causeStr string
	if r.Cause != nil {
		causeStr = r.Cause.Error()
	}
	return serialized{Code: r.Code, Cause: causeStr}
}

func (r *RunError) MarshalYAML() (interface{}, error) {
	return r.serialize(), nil
}

func (r *RunError) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.serialize())
}

func (r *RunError) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var aux serialized
	if err := unmarshal(&aux); err != nil {
		return err
	}
	r.Code = aux.Code
	if aux.Cause != "" {
		r.Cause = errors.New(aux.Cause)
	}
	return nil
}

func (r *RunError) Unwrap() error {
	return r.Cause
}

var _ error = (*RunError)(nil)

func NewManifestNotFoundError(cause error) *RunError {
	return &RunError{Code: ManifestNotFound, Cause: cause}
}

func NewMalformedManifestError(cause error) *RunError {
	return &RunError{Code: MalformedManifest, Cause: cause}
}

func NewRegistryUnavailableError(cause error) *RunError {
	return &RunError{Code: RegistryUnavailable, Cause: cause}
}

func NewMalformedRegistryError(cause error) *RunError {
	return &RunError{Code: MalformedRegistry, Cause: cause}
}

func NewUnknownError(cause error) *RunError {
	return &RunError{Code: UnknownError, Cause: cause}
}

// Standardize gives any error a code, recognizing the manifest and registry sentinels
func Standardize(err error) *RunError {
	if err == nil {
		return nil
	}

	var runErr *RunError
	if errors.As(err, &runErr) {
		return runErr
	}

	switch {
	case errors.Is(err, manifest.ErrManifestNotFound):
		return NewManifestNotFoundError(err)
	case errors.Is(err, manifest.ErrManifestParse):
		return NewMalformedManifestError(err)
	case errors.Is(err, registry.ErrMalformedPayload):
		return NewMalformedRegistryError(err)
	default:
		return NewUnknownError(err)
	}
}
