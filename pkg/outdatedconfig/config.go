// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package outdatedconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"daml.com/x/elm-outdated/pkg/appversion"
	"daml.com/x/elm-outdated/pkg/utils"
	"github.com/goccy/go-yaml"
)

type Config struct {
	HomePath string `yaml:"-"`

	CachePath string `yaml:"-"`
	// guards concurrent writers of CachePath
	CacheLockPath string `yaml:"-"`

	Registry         string `yaml:"registry,omitempty"`
	RegistryAuthPath string `yaml:"registry-auth-path,omitempty"`
	NetrcPath        string `yaml:"netrc,omitempty"`
	Insecure         bool   `yaml:"insecure,omitempty"`

	CacheTTL time.Duration `yaml:"cache-ttl,omitempty"`
	NoCache  bool          `yaml:"no-cache,omitempty"`

	// per request, across retries
	Timeout time.Duration `yaml:"timeout,omitempty"`
	// projects checked in parallel by batch
	Concurrency int `yaml:"concurrency,omitempty"`
}

func (c *Config) EnsureDirs() error {
	return utils.EnsureDirs(c.HomePath, c.CachePath)
}

func Get() (*Config, error) {
	homePath, err := getHomePath()
	if err != nil {
		return nil, err
	}
	return GetWithCustomHome(homePath)
}

func GetWithCustomHome(homePath string) (*Config, error) {
	config := Config{}

	// config.yaml is optional
	configFilePath := filepath.Join(homePath, ConfigFileName)
	fileInfo, err := os.Stat(configFilePath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	} else {
		if fileInfo.IsDir() {
			return nil, fmt.Errorf("%q is directory and not a file", configFilePath)
		}

		bytes, err := os.ReadFile(configFilePath)
		if err != nil {
			return nil, err
		}

		if err := yaml.Unmarshal(bytes, &config); err != nil {
			return nil, fmt.Errorf("invalid config file %q: %w", configFilePath, err)
		}
	}

	if registry, ok := os.LookupEnv(RegistryEnvVar); ok {
		config.Registry = registry
	}
	if config.Registry == "" {
		config.Registry = DefaultRegistry
	}

	if registryAuthPath, ok := os.LookupEnv(RegistryAuthConfigPathEnvVar); ok {
		config.RegistryAuthPath = registryAuthPath
	}

	if netrcPath, ok := os.LookupEnv(NetrcPathEnvVar); ok {
		config.NetrcPath = netrcPath
	}
	if config.NetrcPath == "" {
		config.NetrcPath = defaultNetrcPath()
	}

	insecure, ok, err := utils.BoolEnvVar(AllowInsecureRegistryEnvVar)
	if err != nil {
		return nil, err
	}
	if ok {
		config.Insecure = insecure
	}

	noCache, ok, err := utils.BoolEnvVar(NoCacheEnvVar)
	if err != nil {
		return nil, err
	}
	if ok {
		config.NoCache = noCache
	}

	if ttl, ok := os.LookupEnv(CacheTTLEnvVar); ok {
		d, err := time.ParseDuration(ttl)
		if err != nil || d < 0 {
			return nil, fmt.Errorf("invalid value for '%s' env var. Must be a non-negative duration such as '30m'", CacheTTLEnvVar)
		}
		config.CacheTTL = d
	}
	if config.CacheTTL == 0 {
		config.CacheTTL = DefaultCacheTTL
	}

	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	if config.Concurrency <= 0 {
		config.Concurrency = DefaultConcurrency
	}

	config.HomePath = homePath
	config.CachePath = filepath.Join(homePath, "cache")
	config.CacheLockPath = filepath.Join(config.CachePath, ".lock")
	return &config, nil
}

func getHomePath() (string, error) {
	if v, ok := os.LookupEnv(HomeEnvVar); ok {
		return v, nil
	}

	return getAppUserDataDirectory(AppName)
}

func getAppUserDataDirectory(appName string) (string, error) {
	switch runtime.GOOS {
	case "windows":
		dir, ok := os.LookupEnv("APPDATA")
		if !ok {
			return "", fmt.Errorf("APPDATA environment variable is not set")
		}
		return filepath.Join(dir, appName), nil
	default:
		dir, ok := os.LookupEnv("HOME")
		if !ok {
			return "", fmt.Errorf("HOME environment variable is not set")
		}
		return filepath.Join(dir, "."+appName), nil
	}
}

func defaultNetrcPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	name := ".netrc"
	if runtime.GOOS == "windows" {
		name = "_netrc"
	}
	return filepath.Join(home, name)
}

// GetProjectDir is ELM_OUTDATED_PROJECT if set, else the working directory
func GetProjectDir() (string, error) {
	if p, ok := os.LookupEnv(ProjectEnvVar); ok && p != "" {
		return filepath.Abs(p)
	}
	return os.Getwd()
}

func GetUserAgent() string {
	return fmt.Sprintf("%s/%s", UserAgentPrefix, appversion.GetVersion())
}
