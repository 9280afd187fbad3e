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

package snapshot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Version parse failures.
var (
	ErrEmptyVersion   = errors.New("version string is empty")
	ErrNoMinorVersion = errors.New("version has no minor component")
)

// Version is a parsed manager version string of the form
// "major.minor[.revision].os" (e.g. "256.1.fc40", "255.6-9.9.hs+fb.el9").
// Vendors embed non-numeric content in every component past the first,
// so only the major version is required to be numeric.
type Version struct {
	// Major version number (e.g. 256).
	Major uint32 `json:"major" yaml:"major"`
	// Minor version, kept as a string since distro-patched versions
	// contain hyphens (e.g. "6-9").
	Minor string `json:"minor" yaml:"minor"`
	// Revision is present when the version string has four or more
	// dot-separated components and the third parses as an integer.
	Revision *uint32 `json:"revision" yaml:"revision"`
	// OS is the distribution suffix (e.g. "fc40", "hs+fb.el9").
	OS string `json:"os" yaml:"os"`
}

// NewVersion creates a Version with the given components.
func NewVersion(major uint32, minor string, revision *uint32, os string) *Version {
	return &Version{Major: major, Minor: minor, Revision: revision, OS: os}
}

// ParseVersion parses a manager version string. A leading "v" is
// stripped. The major component must be an unsigned integer; the minor
// is kept verbatim. With four or more components the third is tried as
// a numeric revision, best effort. Everything left is rejoined with
// "." into the OS tag.
func ParseVersion(s string) (*Version, error) {
	if s == "" {
		return nil, ErrEmptyVersion
	}
	parts := strings.Split(strings.TrimPrefix(s, "v"), ".")

	major, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid major version in %q: %w", s, err)
	}
	if len(parts) < 2 {
		return nil, fmt.Errorf("%w: %q", ErrNoMinorVersion, s)
	}

	v := &Version{
		Major: uint32(major),
		Minor: parts[1],
	}

	rest := parts[2:]
	if len(parts) > 3 {
		// Best effort: the third component is consumed either way but
		// only recorded when it parses as an integer.
		if rev, err := strconv.ParseUint(parts[2], 10, 32); err == nil {
			r := uint32(rev)
			v.Revision = &r
		}
		rest = parts[3:]
	}
	v.OS = strings.Join(rest, ".")
	return v, nil
}

// String reassembles the version in its original dotted form.
func (v *Version) String() string {
	parts := []string{strconv.FormatUint(uint64(v.Major), 10), v.Minor}
	if v.Revision != nil {
		parts = append(parts, strconv.FormatUint(uint64(*v.Revision), 10))
	}
	if v.OS != "" {
		parts = append(parts, v.OS)
	}
	return strings.Join(parts, ".")
}
