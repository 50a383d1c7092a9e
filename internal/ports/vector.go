package ports

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"sync"

	chromem "github.com/philippgille/chromem-go"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/hallwayd/internal/logging"
)

// embeddingDims is the dimension of the hashing embedder's output.
const embeddingDims = 128

// ChromemSearch implements VectorSearch on chromem-go, an embeddable vector
// database with no external service dependency. Collections are created on
// first use with a deterministic hashing embedder, so recall works offline
// without a model download.
type ChromemSearch struct {
	db  *chromem.DB
	log *logging.Logger

	mu          sync.Mutex
	collections map[string]*chromem.Collection
}

// NewChromemSearch creates a vector search handle. An empty path yields an
// in-memory database; otherwise state persists under path.
func NewChromemSearch(path string, log *logging.Logger) (*ChromemSearch, error) {
	if log == nil {
		log = logging.NewNop()
	}

	var db *chromem.DB
	if path == "" {
		db = chromem.NewDB()
	} else {
		var err error
		db, err = chromem.NewPersistentDB(path, false)
		if err != nil {
			return nil, fmt.Errorf("creating chromem DB: %w", err)
		}
	}

	return &ChromemSearch{
		db:          db,
		log:         log,
		collections: make(map[string]*chromem.Collection),
	}, nil
}

// Index adds documents to the named collection.
func (s *ChromemSearch) Index(ctx context.Context, collection string, docs []VectorDoc) error {
	if len(docs) == 0 {
		return nil
	}

	col, err := s.getOrCreateCollection(collection)
	if err != nil {
		return err
	}

	converted := make([]chromem.Document, 0, len(docs))
	for _, d := range docs {
		converted = append(converted, chromem.Document{
			ID:       d.ID,
			Content:  d.Content,
			Metadata: d.Metadata,
		})
	}

	if err := col.AddDocuments(ctx, converted, 1); err != nil {
		return fmt.Errorf("indexing into %s: %w", collection, err)
	}

	s.log.Debug(ctx, "documents indexed",
		zap.String("collection", collection),
		zap.Int("count", len(docs)),
	)
	return nil
}

// Search returns up to k documents most similar to query. A collection that
// does not exist yet, or holds fewer than k documents, yields fewer results
// without error.
func (s *ChromemSearch) Search(ctx context.Context, collection, query string, k int) ([]VectorHit, error) {
	col, err := s.getOrCreateCollection(collection)
	if err != nil {
		return nil, err
	}

	// chromem rejects nResults greater than the document count.
	if count := col.Count(); k > count {
		k = count
	}
	if k <= 0 {
		return nil, nil
	}

	results, err := col.Query(ctx, query, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("searching %s: %w", collection, err)
	}

	hits := make([]VectorHit, 0, len(results))
	for _, r := range results {
		hits = append(hits, VectorHit{
			ID:         r.ID,
			Content:    r.Content,
			Similarity: r.Similarity,
			Metadata:   r.Metadata,
		})
	}
	return hits, nil
}

func (s *ChromemSearch) getOrCreateCollection(name string) (*chromem.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if col, ok := s.collections[name]; ok {
		return col, nil
	}

	col, err := s.db.GetOrCreateCollection(name, nil, hashingEmbedding)
	if err != nil {
		return nil, fmt.Errorf("getting/creating collection %s: %w", name, err)
	}
	s.collections[name] = col
	return col, nil
}

// hashingEmbedding is a deterministic bag-of-words embedder: each token
// increments a dimension chosen by FNV hash, then the vector is normalized.
// Coarse, but stable and dependency-free, which is all the built-in memory
// room needs.
func hashingEmbedding(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, embeddingDims)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(token))
		vec[h.Sum32()%embeddingDims]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		// Zero vectors break cosine similarity; give empty text a fixed
		// direction instead.
		vec[0] = 1
		return vec, nil
	}

	scale := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= scale
	}
	return vec, nil
}
