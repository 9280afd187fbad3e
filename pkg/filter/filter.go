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

// Package filter implements the allow/block list rule shared by every
// collector that selects entities by name.
package filter

import "slices"

// Filter pairs an allow list with a block list of entity names. The
// zero value admits everything.
type Filter struct {
	Allow []string `json:"allow,omitempty" yaml:"allow,omitempty"`
	Block []string `json:"block,omitempty" yaml:"block,omitempty"`
}

// New creates a filter from the given allow and block lists.
func New(allow, block []string) Filter {
	return Filter{Allow: allow, Block: block}
}

// Include reports whether name is admitted. A non-empty block list
// always wins over the allow list. With an empty block list, a
// non-empty allow list requires membership. Both lists empty admits
// every name.
func (f Filter) Include(name string) bool {
	if slices.Contains(f.Block, name) {
		return false
	}
	if len(f.Allow) > 0 {
		return slices.Contains(f.Allow, name)
	}
	return true
}

// Empty reports whether neither list is configured.
func (f Filter) Empty() bool {
	return len(f.Allow) == 0 && len(f.Block) == 0
}
