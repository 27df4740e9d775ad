// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package batch

import (
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"daml.com/x/elm-outdated/pkg/manifest"
	"daml.com/x/elm-outdated/pkg/schema"
	"github.com/go-git/go-git/v5"
	"github.com/samber/lo"
)

// directories that only ever hold generated or vendored code
var skippedDirs = []string{".git", "elm-stuff", "node_modules"}

// Project is a directory holding a manifest
type Project struct {
	Dir          string
	ManifestPath string
	Schema       schema.Schema
}

// Discover finds every project below root. Inside a git worktree only tracked manifests count;
// elsewhere the directory tree is walked.
func Discover(root string) ([]Project, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	paths, err := trackedManifests(root)
	if errors.Is(err, git.ErrRepositoryNotExists) || errors.Is(err, git.ErrIsBareRepository) {
		slog.Debug("not a git worktree, walking directory", "root", root)
		paths, err = walkManifests(root)
	}
	if err != nil {
		return nil, err
	}
	return projects(paths), nil
}

func trackedManifests(root string) ([]string, error) {
	r, err := git.PlainOpenWithOptions(root, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, err
	}
	wt, err := r.Worktree()
	if err != nil {
		return nil, err
	}
	idx, err := r.Storer.Index()
	if err != nil {
		return nil, err
	}

	wtRoot := wt.Filesystem.Root()
	var paths []string
	for _, e := range idx.Entries {
		p := filepath.Join(wtRoot, filepath.FromSlash(e.Name))
		if !isManifest(p) || !within(root, p) || inSkippedDir(e.Name) {
			continue
		}
		paths = append(paths, p)
	}
	slog.Debug("tracked manifests", "worktree", wtRoot, "count", len(paths))
	return paths, nil
}

func walkManifests(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != root && lo.Contains(skippedDirs, d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if isManifest(p) {
			paths = append(paths, p)
		}
		return nil
	})
	return paths, err
}

func isManifest(p string) bool {
	_, ok := schema.FromFilename(filepath.Base(p))
	return ok
}

func within(root, p string) bool {
	rel, err := filepath.Rel(root, p)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func inSkippedDir(slashPath string) bool {
	parts := strings.Split(slashPath, "/")
	return lo.Some(parts[:len(parts)-1], skippedDirs)
}

// projects groups manifest paths by directory, keeping the preferred manifest of each
func projects(paths []string) []Project {
	byDir := map[string]Project{}
	for _, p := range paths {
		s, _ := schema.FromFilename(filepath.Base(p))
		dir := filepath.Dir(p)
		if existing, ok := byDir[dir]; ok && existing.Schema <= s {
			continue
		}
		byDir[dir] = Project{Dir: dir, ManifestPath: p, Schema: s}
	}

	result := lo.Values(byDir)
	slices.SortFunc(result, func(a, b Project) int {
		return strings.Compare(a.Dir, b.Dir)
	})
	return result
}

// Read loads the project's manifest
func (p Project) Read() (*manifest.Manifest, error) {
	return manifest.Read(p.ManifestPath, p.Schema)
}
