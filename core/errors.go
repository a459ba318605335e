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
	// ErrInvalidCandidate indicates a Candidate failed validation.
	ErrInvalidCandidate = errors.New("invalid candidate")

	// ErrInvalidQuery indicates a Query failed validation.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrEmptyName indicates the candidate FullName field is empty.
	ErrEmptyName = errors.New("candidate name cannot be empty")

	// ErrNegativeCount indicates a bibliometric counter is negative.
	ErrNegativeCount = errors.New("counts cannot be negative")

	// ErrInvalidYear indicates a year value is negative.
	ErrInvalidYear = errors.New("year cannot be negative")

	// ErrEmptySeries indicates a service record has no conference series.
	ErrEmptySeries = errors.New("service series cannot be empty")
)
