package core

import (
	"strings"
	"time"
)

// KnowledgeBase is a named corpus persisted in storage.
type KnowledgeBase struct {
	Id         ID
	Name       string
	Source     string
	Passages   []string
	Model      string
	InsertedAt time.Time
	UpdatedAt  time.Time
}

// KnowledgeBaseID returns the identifier of the knowledge base with the given name.
func KnowledgeBaseID(name string) ID {
	return IDFromContent("kb\x00" + strings.TrimSpace(name))
}

// NewKnowledgeBase builds a knowledge base record for corpus.
// Source is informational, usually the file the corpus was read from.
func NewKnowledgeBase(name, source string, corpus Corpus) (*KnowledgeBase, error) {
	kb := &KnowledgeBase{
		Id:       KnowledgeBaseID(name),
		Name:     strings.TrimSpace(name),
		Source:   source,
		Passages: corpus.Texts(),
	}
	if err := ValidateKnowledgeBase(kb); err != nil {
		return nil, err
	}
	return kb, nil
}

// Corpus rebuilds the corpus held by kb.
func (kb *KnowledgeBase) Corpus() (Corpus, error) {
	return NewCorpus(kb.Passages)
}
