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
	"testing"
)

func BenchmarkParseVersion(b *testing.B) {
	tests := []string{
		"255.4",
		"v255.4",
		"256.1.fc40",
		"255.6-9.9.hs+fb.el9",
		"252.22-1~deb12u1",
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		input := tests[i%len(tests)]
		_, _ = ParseVersion(input)
	}
}

func BenchmarkParseVersionUpstream(b *testing.B) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = ParseVersion("255.4")
	}
}

func BenchmarkParseVersionVendored(b *testing.B) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = ParseVersion("255.6-9.9.hs+fb.el9")
	}
}

func BenchmarkVersionString(b *testing.B) {
	v, _ := ParseVersion("256.1.fc40")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = v.String()
	}
}
