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

package serializer

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mchmarny/sdmon/pkg/snapshot"
)

// Format represents the output format type
type Format string

const (
	// FormatJSON outputs the nested snapshot as compact JSON
	FormatJSON Format = "json"
	// FormatJSONPretty outputs the nested snapshot with indentation
	FormatJSONPretty Format = "json-pretty"
	// FormatJSONFlat outputs the flattened dotted-key object
	FormatJSONFlat Format = "json-flat"
)

func (f Format) IsUnknown() bool {
	switch f {
	case FormatJSON, FormatJSONPretty, FormatJSONFlat:
		return false
	default:
		return true
	}
}

// SupportedFormats returns a list of all supported output formats.
func SupportedFormats() []string {
	return []string{
		string(FormatJSON),
		string(FormatJSONPretty),
		string(FormatJSONFlat),
	}
}

// Writer emits one snapshot document per call in the configured
// format. Close must be called to release file handles when using
// NewFileWriterOrStdout.
type Writer struct {
	format    Format
	keyPrefix string
	output    io.Writer
	closer    io.Closer
}

// NewWriter creates a Writer with the specified format and output
// destination. If output is nil, os.Stdout will be used. keyPrefix
// applies to flat output only.
func NewWriter(format Format, keyPrefix string, output io.Writer) *Writer {
	if output == nil {
		output = os.Stdout
	}
	return &Writer{
		format:    format,
		keyPrefix: keyPrefix,
		output:    output,
	}
}

// NewFileWriterOrStdout creates a Writer that appends to the given
// file path, falling back to stdout when the path is empty or cannot
// be opened.
func NewFileWriterOrStdout(format Format, keyPrefix, path string) *Writer {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return NewWriter(format, keyPrefix, nil)
	}

	file, err := os.OpenFile(trimmed, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		slog.Error("failed to open output file, using stdout",
			"error", err, "path", trimmed)
		return NewWriter(format, keyPrefix, nil)
	}

	return &Writer{
		format:    format,
		keyPrefix: keyPrefix,
		output:    file,
		closer:    file,
	}
}

// Serialize writes one snapshot document followed by a newline.
func (w *Writer) Serialize(snap *snapshot.Snapshot) error {
	switch w.format {
	case FormatJSON:
		return w.encode(snap, false)
	case FormatJSONPretty:
		return w.encode(snap, true)
	case FormatJSONFlat:
		return w.encode(Flatten(snap, w.keyPrefix), false)
	default:
		return fmt.Errorf("unsupported format: %s", w.format)
	}
}

// Close releases the underlying file handle if the Writer owns one.
func (w *Writer) Close() error {
	if w.closer == nil {
		return nil
	}
	return w.closer.Close()
}

func (w *Writer) encode(v any, indent bool) error {
	encoder := json.NewEncoder(w.output)
	if indent {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to serialize snapshot: %w", err)
	}
	return nil
}
