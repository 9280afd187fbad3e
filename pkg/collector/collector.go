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

package collector

// Property maps from the bus carry variant-decoded values whose Go
// types depend on the daemon's wire signature. These helpers coerce
// them tolerantly; a missing or mistyped property reads as zero.

func propUint64(props map[string]interface{}, key string) uint64 {
	switch v := props[key].(type) {
	case uint64:
		return v
	case uint32:
		return uint64(v)
	case int64:
		if v >= 0 {
			return uint64(v)
		}
	case int32:
		if v >= 0 {
			return uint64(v)
		}
	}
	return 0
}

func propUint32(props map[string]interface{}, key string) uint32 {
	switch v := props[key].(type) {
	case uint32:
		return v
	case uint64:
		return uint32(v)
	case int32:
		if v >= 0 {
			return uint32(v)
		}
	}
	return 0
}

func propInt32(props map[string]interface{}, key string) int32 {
	switch v := props[key].(type) {
	case int32:
		return v
	case int64:
		return int32(v)
	}
	return 0
}

func propBool(props map[string]interface{}, key string) bool {
	v, _ := props[key].(bool)
	return v
}

func propString(props map[string]interface{}, key string) string {
	v, _ := props[key].(string)
	return v
}
