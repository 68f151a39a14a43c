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


package reembed

import (
	"context"

	"github.com/poiesic/educaia/core"
	"github.com/poiesic/educaia/storage"
)

const (
	// DefaultBatchSize is the default number of passages embedded per call
	DefaultBatchSize = 100
)

// PassageIterator walks the passages of every stored knowledge base in batches.
type PassageIterator struct {
	repo      storage.KnowledgeRepository
	batchSize int
}

// NewPassageIterator creates a new passage iterator.
// batchSize: number of passages per batch (must be > 0)
func NewPassageIterator(repo storage.KnowledgeRepository, batchSize int) *PassageIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &PassageIterator{
		repo:      repo,
		batchSize: batchSize,
	}
}

// Count returns the number of knowledge bases and passages the iterator will visit.
func (it *PassageIterator) Count(ctx context.Context) (bases, passages int, err error) {
	kbs, err := it.repo.ListCorpora(ctx)
	if err != nil {
		return 0, 0, err
	}
	for _, kb := range kbs {
		passages += len(kb.Passages)
	}
	return len(kbs), passages, nil
}

// ForEach calls fn for each batch of each knowledge base, in name order.
// last is true on the final batch of a knowledge base.
// Iteration stops on the first error from fn. Context cancellation is checked between batches.
func (it *PassageIterator) ForEach(ctx context.Context, fn func(kb *core.KnowledgeBase, batch []string, last bool) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	kbs, err := it.repo.ListCorpora(ctx)
	if err != nil {
		return err
	}

	for _, kb := range kbs {
		for i := 0; i < len(kb.Passages); i += it.batchSize {
			end := min(i+it.batchSize, len(kb.Passages))

			if err := fn(kb, kb.Passages[i:end], end == len(kb.Passages)); err != nil {
				return err
			}

			if err := ctx.Err(); err != nil {
				return err
			}
		}
	}

	return nil
}
