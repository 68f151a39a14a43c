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
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Passage is one line of a knowledge base.
// Index is the passage position in its corpus and never changes once loaded.
type Passage struct {
	Index int
	Text  string
}

// ID returns the content-based identifier of the passage text.
func (p Passage) ID() ID {
	return IDFromContent(p.Text)
}

// Corpus is an ordered, immutable collection of passages.
// Order is significant: it defines tie-break order and the order in which
// multiple passages are joined into a single answer.
type Corpus struct {
	passages []Passage
}

// NewCorpus builds a corpus from passage texts, preserving their order.
// Every text must contain at least one non-whitespace character.
func NewCorpus(texts []string) (Corpus, error) {
	passages := make([]Passage, len(texts))
	for i, text := range texts {
		if err := ValidatePassageText(text); err != nil {
			return Corpus{}, fmt.Errorf("passage %d: %w", i, err)
		}
		passages[i] = Passage{Index: i, Text: text}
	}
	return Corpus{passages: passages}, nil
}

// MustCorpus is like NewCorpus but panics on invalid input.
// Intended for tests and static fixtures.
func MustCorpus(texts ...string) Corpus {
	c, err := NewCorpus(texts)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseCorpus splits raw knowledge base text into a corpus.
// Each non-blank line, trimmed of surrounding whitespace, becomes one passage.
func ParseCorpus(text string) Corpus {
	lines := strings.Split(text, "\n")
	passages := make([]Passage, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		passages = append(passages, Passage{Index: len(passages), Text: line})
	}
	return Corpus{passages: passages}
}

// Len returns the number of passages.
func (c Corpus) Len() int {
	return len(c.passages)
}

// IsEmpty reports whether the corpus has no passages.
func (c Corpus) IsEmpty() bool {
	return len(c.passages) == 0
}

// Passage returns the passage at index i.
func (c Corpus) Passage(i int) Passage {
	return c.passages[i]
}

// Passages returns a copy of the passages in corpus order.
func (c Corpus) Passages() []Passage {
	out := make([]Passage, len(c.passages))
	copy(out, c.passages)
	return out
}

// Texts returns the raw passage texts in corpus order.
func (c Corpus) Texts() []string {
	texts := make([]string, len(c.passages))
	for i, p := range c.passages {
		texts[i] = p.Text
	}
	return texts
}
