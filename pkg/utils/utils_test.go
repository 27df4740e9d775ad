// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/juju/fslock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoolEnvVar(t *testing.T) {
	t.Setenv("ELM_OUTDATED_TEST_FLAG", "true")
	v, ok, err := BoolEnvVar("ELM_OUTDATED_TEST_FLAG")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, v)

	_, ok, err = BoolEnvVar("ELM_OUTDATED_TEST_UNSET")
	require.NoError(t, err)
	assert.False(t, ok)

	t.Setenv("ELM_OUTDATED_TEST_FLAG", "nope")
	_, _, err = BoolEnvVar("ELM_OUTDATED_TEST_FLAG")
	assert.Error(t, err)
}

func TestWriteFileAtomic(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "registry.json")
	require.NoError(t, WriteFileAtomic(p, []byte("{}")))
	require.NoError(t, WriteFileAtomic(p, []byte(`{"elm/core": ["1.0.0"]}`)))

	data, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, `{"elm/core": ["1.0.0"]}`, string(data))

	entries, err := os.ReadDir(filepath.Dir(p))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestWithFileLock(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "cache", ".lock")

	ran := false
	require.NoError(t, WithFileLock(context.Background(), lockPath, func() error {
		ran = true
		return nil
	}))
	assert.True(t, ran)

	t.Run("gives up when the context ends", func(t *testing.T) {
		held := fslock.New(lockPath)
		require.NoError(t, held.TryLock())
		t.Cleanup(func() { _ = held.Unlock() })

		ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
		defer cancel()
		err := WithFileLock(ctx, lockPath, func() error {
			t.Fatal("action must not run without the lock")
			return nil
		})
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}
