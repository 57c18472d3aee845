package vectorstore

import (
	"context"
	"fmt"
	"time"

	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// QdrantConfig configures the Qdrant-backed store.
type QdrantConfig struct {
	Host       string
	Port       int // gRPC port (6334), not the HTTP REST port
	UseTLS     bool
	APIKey     string
	Collection string
	Timeout    time.Duration
}

// ApplyDefaults fills unset fields with local-development defaults.
func (c *QdrantConfig) ApplyDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 6334
	}
	if c.Collection == "" {
		c.Collection = "rag-data"
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
}

// QdrantStore implements Store against a Qdrant server over gRPC.
type QdrantStore struct {
	client     *qdrant.Client
	collection string
	timeout    time.Duration
	logger     *zap.Logger
}

// NewQdrantStore connects to Qdrant. The collection is not created here; it
// is created lazily by EnsureCollection on the first indexing run.
func NewQdrantStore(cfg QdrantConfig, logger *zap.Logger) (*QdrantStore, error) {
	cfg.ApplyDefaults()
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		UseTLS: cfg.UseTLS,
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create qdrant client: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QdrantStore{
		client:     client,
		collection: cfg.Collection,
		timeout:    cfg.Timeout,
		logger:     logger,
	}, nil
}

// EnsureCollection creates the collection with cosine distance if absent and
// verifies the dimension of an existing one.
func (s *QdrantStore) EnsureCollection(ctx context.Context, dimension int) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	info, err := s.client.GetCollectionInfo(ctx, s.collection)
	switch {
	case err == nil:
		existing := collectionDimension(info)
		if existing != 0 && existing != uint64(dimension) {
			return fmt.Errorf("%w: collection %q has dimension %d, embedder produces %d",
				ErrDimensionMismatch, s.collection, existing, dimension)
		}
		return nil
	case isNotFound(err):
		s.logger.Info("creating collection",
			zap.String("collection", s.collection),
			zap.Int("dimension", dimension))
		createErr := s.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: s.collection,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     uint64(dimension),
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if createErr != nil {
			return wrapTransport("create collection", createErr)
		}
		return nil
	default:
		return wrapTransport("get collection info", err)
	}
}

// Upsert writes points with their attribution payload.
func (s *QdrantStore) Upsert(ctx context.Context, points []Point) error {
	if len(points) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	qp := make([]*qdrant.PointStruct, len(points))
	for i, p := range points {
		qp[i] = &qdrant.PointStruct{
			Id:      qdrant.NewIDNum(p.ID),
			Vectors: qdrant.NewVectors(p.Vector...),
			Payload: qdrant.NewValueMap(map[string]any{
				"text":        p.Text,
				"source":      p.Source,
				"chunk_index": int64(p.ChunkIndex),
				"uploaded_at": p.UploadedAt.UTC().Format(time.RFC3339),
			}),
		}
	}
	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         qp,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return wrapTransport("upsert points", err)
	}
	return nil
}

// DeleteBySource removes all points whose payload source matches.
func (s *QdrantStore) DeleteBySource(ctx context.Context, source string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collection,
		Wait:           qdrant.PtrOf(true),
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: &qdrant.Filter{
					Must: []*qdrant.Condition{qdrant.NewMatch("source", source)},
				},
			},
		},
	})
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return wrapTransport("delete by source", err)
	}
	return nil
}

// Search returns the top-k hits by cosine similarity, best first. An absent
// collection yields an empty result.
func (s *QdrantStore) Search(ctx context.Context, vector []float32, k int) ([]Hit, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	scored, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(k)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, wrapTransport("search", err)
	}
	hits := make([]Hit, 0, len(scored))
	for _, sp := range scored {
		hit := Hit{Score: sp.GetScore()}
		if v, ok := sp.GetPayload()["text"]; ok {
			hit.Text = v.GetStringValue()
		}
		if v, ok := sp.GetPayload()["source"]; ok {
			hit.Source = v.GetStringValue()
		}
		if v, ok := sp.GetPayload()["chunk_index"]; ok {
			hit.ChunkIndex = int(v.GetIntegerValue())
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// Stats reports collection existence and point count.
func (s *QdrantStore) Stats(ctx context.Context) (Stats, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	info, err := s.client.GetCollectionInfo(ctx, s.collection)
	if err != nil {
		if isNotFound(err) {
			return Stats{}, nil
		}
		return Stats{}, wrapTransport("get collection info", err)
	}
	return Stats{Exists: true, PointCount: info.GetPointsCount()}, nil
}

// Close closes the gRPC connection.
func (s *QdrantStore) Close() error {
	return s.client.Close()
}

func collectionDimension(info *qdrant.CollectionInfo) uint64 {
	params := info.GetConfig().GetParams().GetVectorsConfig().GetParams()
	if params == nil {
		return 0
	}
	return params.GetSize()
}

func isNotFound(err error) bool {
	st, ok := status.FromError(err)
	return ok && st.Code() == codes.NotFound
}

func wrapTransport(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrUnavailable, op, err)
}
