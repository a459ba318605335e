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

import (
	"fmt"
	"strings"
)

// ValidateCandidate validates a Candidate according to domain rules.
//
// Validation rules:
//   - FullName must not be empty
//   - WorksCount, CitedByCount and HIndex must not be negative when present
//   - CountsByYear buckets must have non-negative years and counts
//   - Publication years must not be negative (0 means unknown)
//   - Services must name a series and carry a non-negative year
//
// NOT validated:
//   - ID (0 is valid, storage assigns one from a sequence)
//   - Topics, Interests, Bio (all optional)
func ValidateCandidate(c *Candidate) error {
	if c == nil {
		return fmt.Errorf("%w: candidate is nil", ErrInvalidCandidate)
	}

	if strings.TrimSpace(c.FullName) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidCandidate, ErrEmptyName)
	}

	for name, v := range map[string]*int{
		"works_count":    c.WorksCount,
		"cited_by_count": c.CitedByCount,
		"h_index":        c.HIndex,
	} {
		if v != nil && *v < 0 {
			return fmt.Errorf("%w: %w: %s=%d", ErrInvalidCandidate, ErrNegativeCount, name, *v)
		}
	}

	for _, yc := range c.CountsByYear {
		if yc.Year < 0 {
			return fmt.Errorf("%w: %w: counts_by_year %d", ErrInvalidCandidate, ErrInvalidYear, yc.Year)
		}
		if yc.WorksCount < 0 || yc.CitedByCount < 0 {
			return fmt.Errorf("%w: %w: counts_by_year %d", ErrInvalidCandidate, ErrNegativeCount, yc.Year)
		}
	}

	for _, p := range c.Publications {
		if p.Year < 0 {
			return fmt.Errorf("%w: %w: publication %q", ErrInvalidCandidate, ErrInvalidYear, p.Title)
		}
	}

	for _, s := range c.Services {
		if err := ValidateService(s); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidCandidate, err)
		}
	}

	return nil
}

// ValidateService validates a single committee service record.
func ValidateService(s Service) error {
	if strings.TrimSpace(s.Series) == "" {
		return ErrEmptySeries
	}
	if s.Year < 0 {
		return fmt.Errorf("%w: service year %d", ErrInvalidYear, s.Year)
	}
	return nil
}

// ValidateQuery validates a ranking Query.
// A negative lookback is not an error; scoring floors it at 0.
func ValidateQuery(q Query) error {
	if q.Year < 0 {
		return fmt.Errorf("%w: %w: %d", ErrInvalidQuery, ErrInvalidYear, q.Year)
	}
	return nil
}
