package ports

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChromemSearchIndexAndSearch(t *testing.T) {
	vs, err := NewChromemSearch("", nil)
	require.NoError(t, err)
	ctx := context.Background()

	docs := []VectorDoc{
		{ID: "w1", Content: "feeling calm and steady today", Metadata: map[string]string{"tone_label": "calm"}},
		{ID: "w2", Content: "overwhelmed by everything at once", Metadata: map[string]string{"tone_label": "overwhelm"}},
		{ID: "w3", Content: "calm walk in the evening", Metadata: map[string]string{"tone_label": "calm"}},
	}
	require.NoError(t, vs.Index(ctx, "walk_memories", docs))

	hits, err := vs.Search(ctx, "walk_memories", "a calm evening", 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	// Token overlap dominates with the hashing embedder.
	assert.Equal(t, "w3", hits[0].ID)
	assert.Equal(t, "calm", hits[0].Metadata["tone_label"])
}

func TestChromemSearchClampsK(t *testing.T) {
	vs, err := NewChromemSearch("", nil)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, vs.Index(ctx, "c", []VectorDoc{{ID: "only", Content: "one document"}}))

	// Asking for more results than documents exist yields what is there.
	hits, err := vs.Search(ctx, "c", "document", 10)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestChromemSearchEmptyCollection(t *testing.T) {
	vs, err := NewChromemSearch("", nil)
	require.NoError(t, err)

	hits, err := vs.Search(context.Background(), "empty", "anything", 3)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestChromemSearchIndexNothingIsNoop(t *testing.T) {
	vs, err := NewChromemSearch("", nil)
	require.NoError(t, err)
	assert.NoError(t, vs.Index(context.Background(), "c", nil))
}

func TestHashingEmbeddingDeterministic(t *testing.T) {
	a, err := hashingEmbedding(context.Background(), "the same words")
	require.NoError(t, err)
	b, err := hashingEmbedding(context.Background(), "the same words")
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, embeddingDims)
}

func TestHashingEmbeddingEmptyText(t *testing.T) {
	vec, err := hashingEmbedding(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, float32(1), vec[0])
}
