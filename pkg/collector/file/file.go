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

package file

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"
)

// Option configures a Parser.
type Option func(*Parser)

// Parser reads KEY=VALUE state files such as networkd's per-link
// state under /run/systemd/netif/links. Blank lines and '#' comments
// are ignored.
type Parser struct {
	maxSize    int
	vTrimChars string
}

// WithMaxSize caps the readable file size in bytes. Default is 1MB,
// far above any state file the manager writes.
func WithMaxSize(size int) Option {
	return func(p *Parser) {
		p.maxSize = size
	}
}

// WithVTrimChars trims the given characters from both ends of every
// value, e.g. `"` for state files that quote their values.
func WithVTrimChars(chars string) Option {
	return func(p *Parser) {
		p.vTrimChars = chars
	}
}

// NewParser creates a state file parser with the provided options.
func NewParser(opts ...Option) *Parser {
	p := &Parser{maxSize: 1 << 20}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// GetMap parses the file at path into a key/value map. Values are
// whitespace-trimmed and split on the first '='; a line without '='
// maps its key to an empty value. Later duplicate keys win.
func (p *Parser) GetMap(path string) (map[string]string, error) {
	lines, err := p.lines(path)
	if err != nil {
		return nil, err
	}

	result := make(map[string]string, len(lines))
	for _, line := range lines {
		key, value, found := strings.Cut(line, "=")
		key = strings.TrimSpace(key)
		if !found {
			result[key] = ""
			continue
		}

		value = strings.TrimSpace(value)
		if p.vTrimChars != "" {
			value = strings.Trim(value, p.vTrimChars)
		}
		result[key] = value
	}

	return result, nil
}

// lines reads path and returns its non-empty, non-comment lines.
func (p *Parser) lines(path string) ([]string, error) {
	if path == "" {
		return nil, fmt.Errorf("file path cannot be empty")
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %q: %w", path, err)
	}
	if len(b) > p.maxSize {
		return nil, fmt.Errorf("file %q exceeds maximum size of %d bytes", path, p.maxSize)
	}
	if !utf8.Valid(b) {
		return nil, fmt.Errorf("content of file %q is not valid UTF-8", path)
	}

	raw := strings.Split(string(b), "\n")
	result := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		result = append(result, line)
	}

	return result, nil
}
