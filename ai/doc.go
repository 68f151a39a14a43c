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


// Package ai provides abstractions for the embedding services used by educaia.
//
// The retrieval engine depends on the Embedder interface only. Concrete
// providers live in sub-packages:
//
//   - ai/openai: OpenAI-compatible embedding APIs via langchaingo
//   - ai/static: offline hash embedder, no network or model download
//   - ai/cached: LRU and persistent cache in front of any Embedder
//   - ai/mock: test doubles
//
// # Lazy Initialization
//
// Model loading is expensive, so providers are built through a LazyEmbedder.
// The first EmbedText or EmbedTexts call runs the ProviderFactory once; later
// calls reuse the provider. A failed build is remembered until Reset.
//
//	lazy, err := ai.NewLazyEmbedder(openai.Factory(cfg, logger), logger)
//	if err != nil {
//	    return err
//	}
//	defer lazy.Close()
//
//	vector, err := lazy.EmbedText(ctx, "Quando a universidade foi fundada?")
//
// # Constructor Return Type Pattern
//
// Public production constructors (openai.NewProvider, static.NewProvider)
// return INTERFACE types. Test utility constructors (mock.NewMockEmbedder)
// return CONCRETE types so tests can inject behavior and inspect call counts.
//
// # Vectors
//
// NormalizeVector and CosineSimilarity are shared helpers. Similarity is
// accumulated in float64 and a zero vector scores 0 against anything.
package ai
