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

// Package bus connects to a service manager over D-Bus and exposes the
// narrow query surface the collectors need.
//
// One Endpoint wraps two connections to the same bus address: a
// go-systemd manager connection for unit, timer, and state queries, and
// a raw godbus connection for machined enumeration and the bus daemon's
// Debug.Stats interface. Container buses are reached through the
// leader's /proc root, so the same Endpoint works unchanged one level
// down.
package bus
