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


// Package centrality serves co-membership centrality scores from a durable
// cache, recomputing them when the dataset's structure changes or the cached
// entry ages out.
//
// Freshness is decided by a structural signature: a digest of the membership,
// candidate and edition counts and the latest edition year. Two datasets with
// identical counts share a signature, so a coincidental match is served from
// cache until the TTL expires.
//
// Concurrent callers that miss at the same time share a single recomputation.
package centrality
