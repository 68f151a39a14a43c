package badger

import (
	"encoding/binary"

	"github.com/poiesic/educaia/core"
)

// Key prefixes for different data types
const (
	knowledgeBasePrefix = "kbrec:"
	vectorPrefix        = "vecrec:"
)

// makeKnowledgeBaseKey generates a key for a knowledge base by ID.
// Format: prefix:kbID
func makeKnowledgeBaseKey(id core.ID) []byte {
	buf := make([]byte, len(knowledgeBasePrefix)+8)
	offset := copy(buf, knowledgeBasePrefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeVectorModelPrefix generates the key prefix shared by all vectors of a model.
// Format: prefix:modelID
func makeVectorModelPrefix(model string) []byte {
	buf := make([]byte, len(vectorPrefix)+8)
	offset := copy(buf, vectorPrefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(core.IDFromContent(model)))
	return buf
}

// makeVectorKey generates a composite key for the vector of text under model.
// Format: prefix:modelID:textID where textID hashes model and text together
func makeVectorKey(model, text string) []byte {
	prefix := makeVectorModelPrefix(model)
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(core.IDFromContent(model+"\x00"+text)))
	return buf
}
