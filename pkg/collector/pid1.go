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
	"log/slog"
	"os"

	"github.com/prometheus/procfs"

	"github.com/mchmarny/sdmon/pkg/errors"
	"github.com/mchmarny/sdmon/pkg/snapshot"
)

// clockTicksPerSec is the kernel's USER_HZ. Fixed at 100 on every
// supported architecture.
const clockTicksPerSec = 100

// Pid1Collector reads the service manager's own resource usage from
// proc. ProcRoot defaults to /proc; for a container it points at the
// container's proc through its leader's root.
type Pid1Collector struct {
	ProcRoot string
	PID      int
}

// Collect reads stat, fd, and task information for the target PID.
func (c *Pid1Collector) Collect() (*snapshot.Pid1Stats, error) {
	root := c.ProcRoot
	if root == "" {
		root = procfs.DefaultMountPoint
	}
	pid := c.PID
	if pid == 0 {
		pid = 1
	}

	fs, err := procfs.NewFS(root)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCallFailure,
			fmt.Sprintf("failed to open proc at %q", root), err)
	}

	proc, err := fs.Proc(pid)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCallFailure,
			fmt.Sprintf("failed to open proc entry for pid %d", pid), err)
	}

	stat, err := proc.Stat()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeParseFailure,
			fmt.Sprintf("failed to parse stat for pid %d", pid), err)
	}

	stats := &snapshot.Pid1Stats{
		CPUTimeKernel:    ticksToUSecs(stat.STime),
		CPUTimeUser:      ticksToUSecs(stat.UTime),
		MemoryUsageBytes: uint64(stat.RSS) * uint64(os.Getpagesize()),
	}

	if fds, err := proc.FileDescriptorsLen(); err == nil {
		stats.FDCount = uint64(fds)
	} else {
		slog.Debug("failed to count file descriptors", "pid", pid, "error", err)
	}

	if threads, err := fs.AllThreads(pid); err == nil {
		stats.Tasks = uint64(len(threads))
	} else {
		slog.Debug("failed to count tasks", "pid", pid, "error", err)
	}

	return stats, nil
}

func ticksToUSecs(ticks uint) uint64 {
	return uint64(ticks) * (1_000_000 / clockTicksPerSec)
}
