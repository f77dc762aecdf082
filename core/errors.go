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

package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidRecord indicates a Record failed validation.
	ErrInvalidRecord = errors.New("invalid record")

	// ErrEmptyID indicates the record has no identifier.
	ErrEmptyID = errors.New("record id cannot be empty")

	// ErrUnknownTopic indicates a topic outside the fixed category set.
	ErrUnknownTopic = errors.New("topic is not in the category set")

	// ErrNilEntities indicates the entity list was never initialised.
	ErrNilEntities = errors.New("entities must not be nil")
)
