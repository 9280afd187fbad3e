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

// Package serializer turns snapshots into output documents.
//
// # Formats
//
// json: compact nested JSON, one document per line.
//
// json-pretty: the same nested document, indented.
//
// json-flat: a single-level object of dotted keys. Flattening is
// deterministic: sections follow the snapshot's field order, entities
// within a collection are sorted by name, enumerations emit integer
// codes, booleans emit 0/1, and absent sections are omitted. Machine
// subtrees nest under "machine.<name>." and a configured key prefix is
// prepended to every key.
//
// # Usage
//
//	w := serializer.NewFileWriterOrStdout(serializer.FormatJSONFlat, "prod", path)
//	defer w.Close()
//	if err := w.Serialize(snap); err != nil {
//		// Handle error
//	}
package serializer
