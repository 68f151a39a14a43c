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


package storage

import (
	"errors"
	"fmt"
	"time"

	com "github.com/mus-format/common-go"
	"github.com/mus-format/mus-go"
	slops "github.com/mus-format/mus-go/options/slice"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/educaia/core"
)

const knowledgeBaseVersion byte = 1

var (
	// KnowledgeBaseMUS serializes knowledge base records.
	KnowledgeBaseMUS = knowledgeBaseSer{passages: ord.NewSliceSer[string](ord.String)}

	// VectorMUS serializes embeddings as a length followed by raw float32 values.
	VectorMUS = ord.NewSliceSer[float32](raw.Float32)
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, varint.Uint64.Size(uint64(id)))
	varint.Uint64.Marshal(uint64(id), buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := varint.Uint64.Unmarshal(data)
	if err != nil {
		return 0, decodeError(err)
	}
	return core.ID(id), nil
}

// MarshalVector serializes a vector to bytes.
func MarshalVector(vector []float32) []byte {
	buf := make([]byte, VectorMUS.Size(vector))
	VectorMUS.Marshal(vector, buf)
	return buf
}

// UnmarshalVector deserializes a vector written by MarshalVector.
func UnmarshalVector(data []byte) ([]float32, error) {
	vector, _, err := ord.NewValidSliceSer[float32](raw.Float32,
		slops.WithLenValidator[float32](maxCount(len(data)/4))).Unmarshal(data)
	if err != nil {
		return nil, decodeError(err)
	}
	return vector, nil
}

// MarshalKnowledgeBase serializes a KnowledgeBase to bytes.
func MarshalKnowledgeBase(kb *core.KnowledgeBase) []byte {
	buf := make([]byte, KnowledgeBaseMUS.Size(*kb))
	KnowledgeBaseMUS.Marshal(*kb, buf)
	return buf
}

// UnmarshalKnowledgeBase deserializes a KnowledgeBase from bytes.
func UnmarshalKnowledgeBase(data []byte) (*core.KnowledgeBase, error) {
	ser := knowledgeBaseSer{
		passages: ord.NewValidSliceSer[string](ord.String,
			slops.WithLenValidator[string](maxCount(len(data)))),
	}
	kb, _, err := ser.Unmarshal(data)
	if err != nil {
		return nil, decodeError(err)
	}
	return &kb, nil
}

// maxCount rejects element counts the remaining bytes cannot hold,
// so corrupt records never trigger huge allocations.
func maxCount(limit int) com.Validator[int] {
	return com.ValidatorFn[int](func(n int) error {
		if n > limit {
			return fmt.Errorf("%w: %d elements announced", ErrTruncatedData, n)
		}
		return nil
	})
}

var errUnknownVersion = errors.New("unknown knowledge base version")

func decodeError(err error) error {
	switch {
	case errors.Is(err, ErrTruncatedData):
		return err
	case errors.Is(err, mus.ErrTooSmallByteSlice):
		return fmt.Errorf("%w: %w", ErrTruncatedData, err)
	default:
		return fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
}

// knowledgeBaseSer implements mus.Serializer[core.KnowledgeBase].
// Layout: version, id, name, source, model, inserted and updated times in
// unix microseconds, passages.
type knowledgeBaseSer struct {
	passages mus.Serializer[[]string]
}

func (s knowledgeBaseSer) Marshal(kb core.KnowledgeBase, bs []byte) (n int) {
	n = raw.Byte.Marshal(knowledgeBaseVersion, bs)
	n += varint.Uint64.Marshal(uint64(kb.Id), bs[n:])
	n += ord.String.Marshal(kb.Name, bs[n:])
	n += ord.String.Marshal(kb.Source, bs[n:])
	n += ord.String.Marshal(kb.Model, bs[n:])
	n += varint.Int64.Marshal(kb.InsertedAt.UnixMicro(), bs[n:])
	n += varint.Int64.Marshal(kb.UpdatedAt.UnixMicro(), bs[n:])
	n += s.passages.Marshal(kb.Passages, bs[n:])
	return
}

func (s knowledgeBaseSer) Unmarshal(bs []byte) (kb core.KnowledgeBase, n int, err error) {
	version, n, err := raw.Byte.Unmarshal(bs)
	if err != nil {
		return
	}
	if version != knowledgeBaseVersion {
		err = fmt.Errorf("%w %d", errUnknownVersion, version)
		return
	}

	var (
		n1       int
		id       uint64
		inserted int64
		updated  int64
	)
	if id, n1, err = varint.Uint64.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	kb.Id = core.ID(id)
	if kb.Name, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if kb.Source, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if kb.Model, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if inserted, n1, err = varint.Int64.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	kb.InsertedAt = time.UnixMicro(inserted).UTC()
	if updated, n1, err = varint.Int64.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	kb.UpdatedAt = time.UnixMicro(updated).UTC()
	if kb.Passages, n1, err = s.passages.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	return
}

func (s knowledgeBaseSer) Size(kb core.KnowledgeBase) (size int) {
	size = raw.Byte.Size(knowledgeBaseVersion)
	size += varint.Uint64.Size(uint64(kb.Id))
	size += ord.String.Size(kb.Name)
	size += ord.String.Size(kb.Source)
	size += ord.String.Size(kb.Model)
	size += varint.Int64.Size(kb.InsertedAt.UnixMicro())
	size += varint.Int64.Size(kb.UpdatedAt.UnixMicro())
	return size + s.passages.Size(kb.Passages)
}

func (s knowledgeBaseSer) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}
