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

// ValidatePassageText validates the text of a single passage.
//
// Validation rules:
//   - Text must contain at least one non-whitespace character
//
// Surrounding whitespace is allowed here; the loader trims lines before
// building a corpus, callers constructing a Corpus directly keep their text as-is.
func ValidatePassageText(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyPassage
	}
	return nil
}

// ValidateCorpus checks that a corpus is usable as a knowledge base.
//
// Validation rules:
//   - Corpus must hold at least one passage
//   - Every passage index must equal its position
//   - No passage may be empty
func ValidateCorpus(c Corpus) error {
	if c.IsEmpty() {
		return ErrEmptyCorpus
	}
	for i, p := range c.passages {
		if p.Index != i {
			return fmt.Errorf("passage %d has index %d", i, p.Index)
		}
		if err := ValidatePassageText(p.Text); err != nil {
			return fmt.Errorf("passage %d: %w", i, err)
		}
	}
	return nil
}

// ValidateKnowledgeBase checks a knowledge base record before it is stored.
//
// Validation rules:
//   - Name must contain at least one non-whitespace character
//   - Passages must form a valid corpus
func ValidateKnowledgeBase(kb *KnowledgeBase) error {
	if kb == nil || strings.TrimSpace(kb.Name) == "" {
		return ErrInvalidName
	}
	corpus, err := NewCorpus(kb.Passages)
	if err != nil {
		return err
	}
	return ValidateCorpus(corpus)
}
