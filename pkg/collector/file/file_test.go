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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "2")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestGetMapLinkState(t *testing.T) {
	path := writeFixture(t, `# This is private data. Do not parse.
ADMIN_STATE=configured
OPER_STATE=routable
CARRIER_STATE=carrier
ADDRESS_STATE=routable
IPV4_ADDRESS_STATE=routable
IPV6_ADDRESS_STATE=degraded
REQUIRED_FOR_ONLINE=yes
NETWORK_FILE=/usr/lib/systemd/network/80-container-host0.network
DNS=10.0.0.1 10.0.0.2
`)

	kv, err := NewParser().GetMap(path)
	require.NoError(t, err)

	assert.Len(t, kv, 9)
	assert.Equal(t, "configured", kv["ADMIN_STATE"])
	assert.Equal(t, "routable", kv["OPER_STATE"])
	assert.Equal(t, "degraded", kv["IPV6_ADDRESS_STATE"])
	assert.Equal(t, "yes", kv["REQUIRED_FOR_ONLINE"])
	assert.Equal(t, "/usr/lib/systemd/network/80-container-host0.network", kv["NETWORK_FILE"])
	assert.Equal(t, "10.0.0.1 10.0.0.2", kv["DNS"])
}

func TestGetMapQuotedValues(t *testing.T) {
	path := writeFixture(t, `NETWORK_FILE="/run/systemd/network/10-netif.network"
OPER_STATE="carrier"
`)

	kv, err := NewParser(WithVTrimChars(`"`)).GetMap(path)
	require.NoError(t, err)

	assert.Equal(t, "/run/systemd/network/10-netif.network", kv["NETWORK_FILE"])
	assert.Equal(t, "carrier", kv["OPER_STATE"])
}

func TestGetMapKeyWithoutValue(t *testing.T) {
	path := writeFixture(t, "NETWORK_FILE=\nCARRIER_STATE\nOPER_STATE=off\n")

	kv, err := NewParser().GetMap(path)
	require.NoError(t, err)

	assert.Equal(t, "", kv["NETWORK_FILE"])
	assert.Equal(t, "", kv["CARRIER_STATE"])
	assert.Equal(t, "off", kv["OPER_STATE"])
}

func TestGetMapValueContainsDelimiter(t *testing.T) {
	path := writeFixture(t, "ACTIVATION_POLICY=up=manual\n")

	kv, err := NewParser().GetMap(path)
	require.NoError(t, err)

	// Split happens on the first '=' only.
	assert.Equal(t, "up=manual", kv["ACTIVATION_POLICY"])
}

func TestGetMapDuplicateKeyLastWins(t *testing.T) {
	path := writeFixture(t, "OPER_STATE=carrier\nOPER_STATE=routable\n")

	kv, err := NewParser().GetMap(path)
	require.NoError(t, err)

	assert.Equal(t, "routable", kv["OPER_STATE"])
}

func TestGetMapWhitespaceAndBlankLines(t *testing.T) {
	path := writeFixture(t, "\n  ADMIN_STATE = configured  \n\n\t\n")

	kv, err := NewParser().GetMap(path)
	require.NoError(t, err)

	assert.Len(t, kv, 1)
	assert.Equal(t, "configured", kv["ADMIN_STATE"])
}

func TestGetMapCommentsSkipped(t *testing.T) {
	path := writeFixture(t, `# header comment
OPER_STATE=routable
# NETWORK_FILE=/should/not/appear
`)

	kv, err := NewParser().GetMap(path)
	require.NoError(t, err)

	assert.Len(t, kv, 1)
	assert.NotContains(t, kv, "NETWORK_FILE")
}

func TestGetMapEmptyFile(t *testing.T) {
	path := writeFixture(t, "")

	kv, err := NewParser().GetMap(path)
	require.NoError(t, err)
	assert.Empty(t, kv)
}

func TestGetMapMissingFile(t *testing.T) {
	_, err := NewParser().GetMap(filepath.Join(t.TempDir(), "99"))
	assert.Error(t, err)
}

func TestGetMapEmptyPath(t *testing.T) {
	_, err := NewParser().GetMap("")
	assert.Error(t, err)
}

func TestGetMapMaxSizeExceeded(t *testing.T) {
	path := writeFixture(t, "OPER_STATE=routable\nADMIN_STATE=configured\n")

	_, err := NewParser(WithMaxSize(8)).GetMap(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maximum size")
}

func TestGetMapInvalidUTF8(t *testing.T) {
	path := filepath.Join(t.TempDir(), "3")
	require.NoError(t, os.WriteFile(path, []byte{0xff, 0xfe, '=', 0xfd}, 0600))

	_, err := NewParser().GetMap(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UTF-8")
}
