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

// Package snapshot defines the data model for one collection cycle:
// the Snapshot aggregate, the per-subsystem stat structs, and the
// closed state enumerations with their stable integer codes.
//
// Every Snapshot field is independently optional. A nil field means
// the owning collector was disabled or failed during that cycle; it
// never means "zero observed". Enumerated states serialize as their
// integer codes so downstream consumers are insulated from symbolic
// renames.
package snapshot
