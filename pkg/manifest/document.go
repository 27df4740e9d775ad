// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/goccy/go-yaml"
)

const maxFragmentLen = 120

// document is an ordered view over the decoded manifest, so that entries keep their declaration order
type document yaml.MapSlice

func decode(contents []byte, file string) (document, error) {
	// the ordered decode below is YAML, which also accepts unquoted scalars and trailing commas
	if !json.Valid(contents) {
		return nil, &ParseError{File: file, Fragment: fragment(string(contents)), Err: errors.New("invalid JSON")}
	}
	var doc yaml.MapSlice
	if err := yaml.UnmarshalWithOptions(contents, &doc, yaml.UseOrderedMap()); err != nil {
		return nil, &ParseError{File: file, Fragment: fragment(string(contents)), Err: err}
	}
	if doc == nil {
		return nil, &ParseError{File: file, Fragment: fragment(string(contents)), Err: errors.New("expected a JSON object")}
	}
	return document(doc), nil
}

func (d document) get(key string) (any, bool) {
	for _, item := range d {
		if k, ok := item.Key.(string); ok && k == key {
			return item.Value, true
		}
	}
	return nil, false
}

// object returns the nested object under key; ok is false when the key is absent
func (d document) object(key, file string) (document, bool, error) {
	raw, ok := d.get(key)
	if !ok {
		return nil, false, nil
	}
	obj, isObj := raw.(yaml.MapSlice)
	if !isObj {
		if raw == nil {
			return document{}, true, nil
		}
		return nil, true, &ParseError{File: file, Fragment: fmt.Sprintf("%q", key), Err: fmt.Errorf("expected an object, got %T", raw)}
	}
	return document(obj), true, nil
}

func (d document) requiredObject(key, file string) (document, error) {
	obj, ok, err := d.object(key, file)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &ParseError{File: file, Fragment: fmt.Sprintf("%q", key), Err: errors.New("missing required field")}
	}
	return obj, nil
}

func (d document) str(key, file string) (string, bool, error) {
	raw, ok := d.get(key)
	if !ok {
		return "", false, nil
	}
	s, isStr := raw.(string)
	if !isStr {
		return "", true, &ParseError{File: file, Fragment: fmt.Sprintf("%q", key), Err: fmt.Errorf("expected a string, got %T", raw)}
	}
	return s, true, nil
}

type pair struct {
	name, text string
}

// pairs returns the name -> text mappings of a dependency table, in order
func (d document) pairs(file string) ([]pair, error) {
	result := make([]pair, 0, len(d))
	for _, item := range d {
		name, ok := item.Key.(string)
		if !ok || name == "" {
			return nil, &ParseError{File: file, Fragment: fmt.Sprintf("%v", item.Key), Err: errors.New("expected a package name")}
		}
		text, ok := item.Value.(string)
		if !ok {
			return nil, &ParseError{File: file, Fragment: fmt.Sprintf("%q: %v", name, item.Value), Err: fmt.Errorf("expected a version string, got %T", item.Value)}
		}
		result = append(result, pair{name: name, text: text})
	}
	return result, nil
}

func fragment(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxFragmentLen {
		return s[:maxFragmentLen] + "..."
	}
	return s
}

func dedupe(entries []Entry) []Entry {
	seen := map[string]struct{}{}
	result := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.Name]; ok {
			slog.Debug("ignoring duplicate manifest entry", "package", e.Name, "category", e.Category)
			continue
		}
		seen[e.Name] = struct{}{}
		result = append(result, e)
	}
	return result
}
