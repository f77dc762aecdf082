// Copyright 2025 Poiesic Systems
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

package storage

import (
	"encoding/json"
	"fmt"

	"github.com/poiesic/newsroom/core"
)

// MarshalRecord serializes a record for byte-oriented backends.
func MarshalRecord(record *core.Record) ([]byte, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return data, nil
}

// UnmarshalRecord deserializes a record written by MarshalRecord.
// A stored nil entity list is normalized to an empty one.
func UnmarshalRecord(data []byte) (*core.Record, error) {
	var record core.Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	if record.Entities == nil {
		record.Entities = []string{}
	}
	return &record, nil
}

// CloneRecord returns a deep copy so callers cannot mutate stored state.
func CloneRecord(record *core.Record) *core.Record {
	if record == nil {
		return nil
	}
	c := *record
	c.Entities = append(make([]string, 0, len(record.Entities)), record.Entities...)
	return &c
}
