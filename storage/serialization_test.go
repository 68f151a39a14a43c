package storage

import (
	"testing"
	"time"

	"github.com/poiesic/educaia/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalID(t *testing.T) {
	tests := []struct {
		name string
		id   core.ID
	}{
		{"zero ID", core.ID(0)},
		{"small ID", core.ID(42)},
		{"large ID", core.ID(18446744073709551615)}, // max uint64
		{"content-based ID", core.IDFromContent("test content")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalID(tt.id)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalID(data)
			require.NoError(t, err)
			assert.Equal(t, tt.id, decoded)
		})
	}
}

func TestUnmarshalID_Invalid(t *testing.T) {
	_, err := UnmarshalID([]byte{})
	assert.ErrorIs(t, err, ErrTruncatedData)

	_, err = UnmarshalID([]byte{0x80, 0x80})
	assert.ErrorIs(t, err, ErrTruncatedData)
}

func TestMarshalUnmarshalVector(t *testing.T) {
	vector := []float32{0.1, -0.2, 0, 1, 3.5e-8}
	decoded, err := UnmarshalVector(MarshalVector(vector))
	require.NoError(t, err)
	assert.Equal(t, vector, decoded)

	empty, err := UnmarshalVector(MarshalVector(nil))
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = UnmarshalVector([]byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrTruncatedData)

	_, err = UnmarshalVector([]byte{0xff, 0xff, 0xff, 0x7f})
	assert.ErrorIs(t, err, ErrTruncatedData)
}

func TestMarshalUnmarshalKnowledgeBase(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	kb := &core.KnowledgeBase{
		Id:         core.KnowledgeBaseID("ufx"),
		Name:       "ufx",
		Source:     "/srv/base_conhecimento.txt",
		Passages:   []string{"O curso de Informática dura 4 anos.", "Ação e reação."},
		Model:      "all-minilm",
		InsertedAt: now.Add(-time.Hour),
		UpdatedAt:  now,
	}

	decoded, err := UnmarshalKnowledgeBase(MarshalKnowledgeBase(kb))
	require.NoError(t, err)
	assert.Equal(t, kb, decoded)
}

func TestUnmarshalKnowledgeBase_Invalid(t *testing.T) {
	kb := &core.KnowledgeBase{Name: "ufx", Passages: []string{"um", "dois"}}
	data := MarshalKnowledgeBase(kb)

	t.Run("empty data", func(t *testing.T) {
		_, err := UnmarshalKnowledgeBase(nil)
		assert.ErrorIs(t, err, ErrTruncatedData)
	})

	t.Run("truncated", func(t *testing.T) {
		for cut := 1; cut < len(data); cut++ {
			_, err := UnmarshalKnowledgeBase(data[:cut])
			assert.Error(t, err, "cut at %d", cut)
		}
	})

	t.Run("passage count larger than record", func(t *testing.T) {
		bad := MarshalKnowledgeBase(&core.KnowledgeBase{Name: "ufx"})
		bad = append(bad[:len(bad)-1], 0xff, 0xff, 0xff, 0x0f)
		_, err := UnmarshalKnowledgeBase(bad)
		assert.ErrorIs(t, err, ErrTruncatedData)
	})

	t.Run("unknown version", func(t *testing.T) {
		bad := append([]byte{99}, data[1:]...)
		_, err := UnmarshalKnowledgeBase(bad)
		assert.ErrorIs(t, err, ErrSerializationFailed)
	})
}
