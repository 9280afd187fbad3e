// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package collector

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProc builds a minimal proc tree for one process.
func fakeProc(t *testing.T, pid int, utimeTicks, stimeTicks, rssPages int) string {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, fmt.Sprintf("%d", pid))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "fd"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "task", "1"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "task", "2"), 0755))

	// Fields past rss are irrelevant here but the parser wants a full line.
	stat := fmt.Sprintf("%d (systemd) S 0 1 1 0 -1 4194560 1000 0 0 0 %d %d 0 0 20 0 1 0 3 10000000 %d 18446744073709551615 1 1 0 0 0 0 671173123 4096 1260 0 0 0 17 0 0 0 0 0 0 0 0 0 0 0 0 0 0",
		pid, utimeTicks, stimeTicks, rssPages)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stat"), []byte(stat+"\n"), 0644))

	for i := 0; i < 3; i++ {
		target := filepath.Join(root, fmt.Sprintf("fdtarget%d", i))
		require.NoError(t, os.WriteFile(target, nil, 0644))
		require.NoError(t, os.Symlink(target, filepath.Join(dir, "fd", fmt.Sprintf("%d", i))))
	}
	return root
}

func TestPid1Collector(t *testing.T) {
	root := fakeProc(t, 1, 150, 50, 2048)

	c := &Pid1Collector{ProcRoot: root, PID: 1}
	stats, err := c.Collect()
	require.NoError(t, err)

	assert.Equal(t, uint64(150*10000), stats.CPUTimeUser)
	assert.Equal(t, uint64(50*10000), stats.CPUTimeKernel)
	assert.Equal(t, uint64(2048)*uint64(os.Getpagesize()), stats.MemoryUsageBytes)
	assert.Equal(t, uint64(3), stats.FDCount)
	assert.Equal(t, uint64(2), stats.Tasks)
}

func TestPid1CollectorMissingProc(t *testing.T) {
	c := &Pid1Collector{ProcRoot: t.TempDir(), PID: 999}
	stats, err := c.Collect()
	assert.Error(t, err)
	assert.Nil(t, stats)
}
