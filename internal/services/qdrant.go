package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"github.com/rs/zerolog"
)

// GuidelineStore keeps resume-writing guidance chunks for retrieval.
type GuidelineStore interface {
	InitCollection(ctx context.Context) error
	UpsertGuideline(ctx context.Context, source string, text string, embedding []float32) error
	SearchSimilar(ctx context.Context, queryEmbedding []float32, limit int) ([]SearchResult, error)
	DeleteSource(ctx context.Context, source string) error
}

type SearchResult struct {
	ID     string
	Score  float32
	Text   string
	Source string
}

type qdrantStore struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
	logger         zerolog.Logger
}

func NewQdrantStore(urlStr, apiKey, collectionName string, logger zerolog.Logger) (GuidelineStore, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	useTLS := parsed.Scheme == "https"

	// gRPC port
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &qdrantStore{
		client:         client,
		collectionName: collectionName,
		vectorSize:     768, // text-embedding-004
		logger:         logger,
	}, nil
}

func (q *qdrantStore) InitCollection(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if exists {
		q.logger.Info().Str("collection", q.collectionName).Msg("✅ Collection already exists")
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     q.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	q.logger.Info().Str("collection", q.collectionName).Msg("✅ Qdrant collection created")
	return nil
}

func (q *qdrantStore) UpsertGuideline(ctx context.Context, source string, text string, embedding []float32) error {
	point := &qdrant.PointStruct{
		Id:      qdrant.NewID(uuid.New().String()),
		Vectors: qdrant.NewVectors(embedding...),
		Payload: qdrant.NewValueMap(map[string]any{
			"source": source,
			"text":   text,
		}),
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert point: %w", err)
	}

	return nil
}

func (q *qdrantStore) SearchSimilar(ctx context.Context, queryEmbedding []float32, limit int) ([]SearchResult, error) {
	points, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(queryEmbedding...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	results := make([]SearchResult, 0, len(points))
	for _, point := range points {
		result := SearchResult{
			ID:    point.GetId().GetUuid(),
			Score: point.Score,
		}
		if v, ok := point.Payload["text"]; ok {
			result.Text = v.GetStringValue()
		}
		if v, ok := point.Payload["source"]; ok {
			result.Source = v.GetStringValue()
		}
		results = append(results, result)
	}

	return results, nil
}

func (q *qdrantStore) DeleteSource(ctx context.Context, source string) error {
	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch("source", source),
		},
	}

	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collectionName,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: filter,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete guidelines: %w", err)
	}

	return nil
}

// GuidelineRetriever returns formatted guideline context for a resume.
type GuidelineRetriever interface {
	Retrieve(ctx context.Context, resume string) (string, error)
}

type guidelineRetriever struct {
	embedder      Embedder
	store         GuidelineStore
	promptBuilder *PromptBuilder
	limit         int
}

func NewGuidelineRetriever(embedder Embedder, store GuidelineStore, limit int) GuidelineRetriever {
	if limit <= 0 {
		limit = 3
	}
	return &guidelineRetriever{
		embedder:      embedder,
		store:         store,
		promptBuilder: NewPromptBuilder(),
		limit:         limit,
	}
}

func (r *guidelineRetriever) Retrieve(ctx context.Context, resume string) (string, error) {
	embedding, err := r.embedder.Embed(ctx, r.promptBuilder.BuildGuidelineQuery(resume))
	if err != nil {
		return "", fmt.Errorf("failed to generate query embedding: %w", err)
	}

	results, err := r.store.SearchSimilar(ctx, embedding, r.limit)
	if err != nil {
		return "", err
	}

	return FormatGuidelineContext(results), nil
}
