// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package outdatedconfig

const envVarPrefix = "ELM_OUTDATED_"

const (
	// HomeEnvVar
	// ELM_OUTDATED_HOME is the absolute path to the elm-outdated home directory (config file and cache)
	HomeEnvVar = envVarPrefix + "HOME"

	// RegistryEnvVar
	// ELM_OUTDATED_REGISTRY overrides where the package registry is read from.
	// 	Accepted forms: https://host, http://host, oci://host/repo, file:///path or a plain path
	// 	Default: https://package.elm-lang.org
	RegistryEnvVar = envVarPrefix + "REGISTRY"

	// RegistryAuthConfigPathEnvVar
	// ELM_OUTDATED_REGISTRY_AUTH overrides the OCI registry auth file used for oci:// registries.
	// Contains a path to a config file similar to docker’s config.json
	// 	default: $HOME/.docker/config.json).
	RegistryAuthConfigPathEnvVar = envVarPrefix + "REGISTRY_AUTH"

	// NetrcPathEnvVar
	// ELM_OUTDATED_NETRC is the netrc file consulted for basic auth against http(s) registries
	// 	default: $HOME/.netrc
	NetrcPathEnvVar = envVarPrefix + "NETRC"

	// AllowInsecureRegistryEnvVar
	// ELM_OUTDATED_INSECURE_REGISTRY allows plain http for oci:// registries
	AllowInsecureRegistryEnvVar = envVarPrefix + "INSECURE_REGISTRY"

	// CacheTTLEnvVar
	// ELM_OUTDATED_CACHE_TTL is how long a downloaded registry snapshot is reused, e.g. "30m".
	// 	Default: 1h
	CacheTTLEnvVar = envVarPrefix + "CACHE_TTL"

	// NoCacheEnvVar
	// ELM_OUTDATED_NO_CACHE always downloads a fresh registry snapshot
	NoCacheEnvVar = envVarPrefix + "NO_CACHE"

	// LogLevelEnvVar
	// ELM_OUTDATED_LOG_LEVEL sets the log level.
	// 	Default: warn
	//  Possible values: debug info warn error
	LogLevelEnvVar = envVarPrefix + "LOG_LEVEL"

	// ProjectEnvVar
	// ELM_OUTDATED_PROJECT is a path to an elm project directory.
	// This allows running a check without changing directory
	ProjectEnvVar = envVarPrefix + "PROJECT"
)
