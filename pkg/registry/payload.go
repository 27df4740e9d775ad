// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

var ErrMalformedPayload = errors.New("malformed registry payload")

// DecodePayload flattens a registry payload into records. Three shapes are understood:
//
//	{"elm/core": ["1.0.0", "1.0.1"]}                    // 0.19 all-packages
//	[{"name": "elm-lang/core", "versions": ["5.1.1"]}]  // 0.18 all-packages
//	["elm/core@1.0.0", "elm/json@1.1.3"]                // 0.19 all-packages/since
//
// Anything else at the top level is ErrMalformedPayload. Individual entries that do not fit the
// shape are skipped.
func DecodePayload(data []byte) ([]Record, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrMalformedPayload)
	}

	switch trimmed[0] {
	case '{':
		return decodeObject(trimmed)
	case '[':
		return decodeArray(trimmed)
	default:
		return nil, fmt.Errorf("%w: expected a JSON object or array", ErrMalformedPayload)
	}
}

func decodeObject(data []byte) ([]Record, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedPayload, err.Error())
	}

	var records []Record
	for name, rawVersions := range raw {
		var versions []string
		if err := json.Unmarshal(rawVersions, &versions); err != nil {
			slog.Debug("skipping registry entry", "package", name, "err", err.Error())
			continue
		}
		for _, v := range versions {
			records = append(records, Record{Name: name, Version: v})
		}
	}
	return records, nil
}

type oldEntry struct {
	Name     string   `json:"name"`
	Versions []string `json:"versions"`
}

func decodeArray(data []byte) ([]Record, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedPayload, err.Error())
	}

	var records []Record
	for _, item := range raw {
		var nameAtVersion string
		if err := json.Unmarshal(item, &nameAtVersion); err == nil {
			at := strings.LastIndex(nameAtVersion, "@")
			if at <= 0 {
				slog.Debug("skipping registry entry", "entry", nameAtVersion)
				continue
			}
			records = append(records, Record{Name: nameAtVersion[:at], Version: nameAtVersion[at+1:]})
			continue
		}

		var entry oldEntry
		if err := json.Unmarshal(item, &entry); err != nil || entry.Name == "" {
			slog.Debug("skipping registry entry", "entry", string(item))
			continue
		}
		for _, v := range entry.Versions {
			records = append(records, Record{Name: entry.Name, Version: v})
		}
	}
	return records, nil
}

// Load decodes a payload and builds its Index
func Load(data []byte) (*Index, error) {
	records, err := DecodePayload(data)
	if err != nil {
		return nil, err
	}
	return Build(records), nil
}
