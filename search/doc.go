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


// Package search answers questions from a small corpus of passages.
//
// The Engine implements a hybrid retrieval algorithm:
//   - Semantic similarity between the question and each passage embedding
//   - Keyword overlap between the normalized question and passage
//   - A bonus for overview questions ("fale sobre", "explique", ...) that may
//     join up to three passages into one answer
//   - A lexical fallback when no passage clears the threshold
//
// Text helpers (Normalize, ExtractKeywords, GenericBonus, Combine) are pure and
// exported for diagnostics and tests.
package search
