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

// Package file provides a small configurable parser for line oriented
// state files, such as the per-link state files systemd-networkd writes
// under /run/systemd/netif/links.
//
// # Usage
//
// Parse a link state file into a key/value map:
//
//	p := file.NewParser(file.WithVTrimChars(`"`))
//	state, err := p.GetMap("/run/systemd/netif/links/2")
//	if err != nil {
//	    // Handle error
//	}
//	fmt.Println(state["OPER_STATE"])
//
// The parser skips comment lines, validates UTF-8, and enforces a
// maximum file size (1MB by default). Functional options control the
// size cap and value quote trimming.
//
// # Thread Safety
//
// A Parser carries only immutable configuration and is safe for
// concurrent use.
package file
