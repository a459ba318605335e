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


// Package match implements lexical topic matching between query phrases and
// candidate research interests.
//
// Text is normalized (lowercase, diacritics folded, punctuation removed) and
// tokenized before comparison. Two phrases are compared with the Dice
// coefficient over their token sets:
//
//	PhraseSimilarity("machine learning", "learning systems") // 0.5
//
// TopicSimilarity aggregates per-phrase best matches, giving longer query
// phrases slightly more weight. All functions are pure and safe for
// concurrent use.
package match
