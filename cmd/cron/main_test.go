// MediaTiger Analytics - Channel Revenue Analytics Core
// Copyright 2026 MediaTiger
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediatiger/analytics

package main

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerPIDLiveProcess(t *testing.T) {
	pidFile := filepath.Join(t.TempDir(), "cron.pid")
	require.NoError(t, os.WriteFile(pidFile, []byte(strconv.Itoa(os.Getpid())), 0o644))

	pid, running := schedulerPID(pidFile)
	assert.True(t, running)
	assert.Equal(t, os.Getpid(), pid)
}

func TestSchedulerPIDStaleFile(t *testing.T) {
	pidFile := filepath.Join(t.TempDir(), "cron.pid")
	// PID far above the default kernel pid_max, so no live process owns it.
	require.NoError(t, os.WriteFile(pidFile, []byte("4194999"), 0o644))

	_, running := schedulerPID(pidFile)
	assert.False(t, running)
}

func TestSchedulerPIDMissingOrGarbageFile(t *testing.T) {
	dir := t.TempDir()

	_, running := schedulerPID(filepath.Join(dir, "absent.pid"))
	assert.False(t, running)

	garbage := filepath.Join(dir, "garbage.pid")
	require.NoError(t, os.WriteFile(garbage, []byte("not-a-pid\n"), 0o644))
	_, running = schedulerPID(garbage)
	assert.False(t, running)
}
