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


// Package ranking blends per-candidate signals into a ranked list of
// program-committee recommendations.
//
// For every candidate the Ranker computes eight sub-scores in [0,1]:
//
//	topic_sim          token overlap between query topics and candidate phrases
//	semantic_score     embedding similarity of query and profile text
//	pub_recency_score  decayed recent publication output
//	pc_recency_score   decayed recent committee service
//	impact_score       citations, h-index and works, log compressed
//	pagerank_score     co-membership graph centrality
//	experience_score   committee services, optionally within one series
//	newcomer_score     few services, gated by relevance
//
// The total is the weighted sum of the sub-scores. Results are sorted by
// total descending with ties kept in candidate ID order and truncated to
// the requested limit (at least one).
//
// Missing signals contribute 0. Apart from failing to load the candidate
// population, ranking never returns an error.
package ranking
