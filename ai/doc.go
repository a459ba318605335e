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


// Package ai defines the AI services the ranking engine depends on.
//
// Two capabilities are modelled:
//
//   - Embedder: turns profile and query texts into vectors for the
//     semantic-similarity signal.
//   - TopicExtractor: turns a free-text request ("who should review our
//     federated learning track?") into topic phrases for a ranking query.
//
// AIProvider bundles both so callers can construct and close them together.
//
// Implementations live in sub-packages:
//
//   - ai/openai: OpenAI-compatible APIs (Ollama, vLLM, LocalAI, OpenAI)
//   - ai/mock: deterministic test doubles
//
// Public constructors in ai/openai return interface types. The mock
// constructors return concrete types so tests can inspect call counts and
// inject behaviour.
//
// When no embedding backend is configured, Unavailable returns an Embedder
// whose calls fail with ErrEmbeddingUnavailable. The semantic signal treats
// that as a zero score rather than an error.
package ai
