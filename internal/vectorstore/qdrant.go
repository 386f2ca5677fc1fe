package vectorstore

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/qdrant/go-client/qdrant"

	"versebox/internal/contextutil"
)

// Payload keys under which a corpus point stores its text. The importer
// writes "content"; older corpus snapshots used "document".
var contentKeys = []string{"content", "document", "text"}

// QdrantStore implements VectorStore using Qdrant.
type QdrantStore struct {
	client *qdrant.Client
}

// NewQdrantStore creates a new Qdrant vector store client.
// urlStr should be in the format "http://host:port" (e.g., "http://localhost:6333").
// The gRPC port (typically 6334) will be derived from the HTTP port.
func NewQdrantStore(urlStr string) (*QdrantStore, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsedURL.Hostname()
	if host == "" {
		host = "localhost"
	}

	port := 6334 // default gRPC port
	if parsedURL.Port() != "" {
		httpPort, err := strconv.Atoi(parsedURL.Port())
		if err == nil {
			// gRPC port is typically HTTP port + 1
			port = httpPort + 1
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Qdrant client: %w", err)
	}

	return &QdrantStore{client: client}, nil
}

// Query performs a similarity search returning up to k candidates.
func (s *QdrantStore) Query(ctx context.Context, collection string, vector []float32, k int) ([]Candidate, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if k <= 0 {
		return nil, fmt.Errorf("k must be greater than 0")
	}

	limit := uint64(k)
	scoredPoints, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to query points", "collection", collection, "k", k, "error", err)
		return nil, fmt.Errorf("failed to query points: %w", err)
	}

	results := make([]Candidate, 0, len(scoredPoints))
	for _, point := range scoredPoints {
		content, meta := splitPayload(point.Payload)
		if content == "" {
			continue
		}
		results = append(results, Candidate{
			Content: content,
			Meta:    meta,
			Score:   point.Score,
		})
	}

	logger.InfoContext(ctx, "query completed", "collection", collection, "k", k, "results", len(results))
	return results, nil
}

// Scroll enumerates the collection in id order, batchSize points at a time.
// Qdrant's scroll offset is inclusive, so the first point of every follow-up
// batch repeats the previous batch's last point and is skipped. If the
// paginated scroll fails on the first batch, one unpaged fetch is attempted
// before giving up.
func (s *QdrantStore) Scroll(ctx context.Context, collection string, filter map[string]string, batchSize int, fn func(Document) bool) error {
	logger := contextutil.LoggerFromContext(ctx)

	if batchSize <= 0 {
		batchSize = 1000
	}

	var qdrantFilter *qdrant.Filter
	if len(filter) > 0 {
		conditions := make([]*qdrant.Condition, 0, len(filter))
		for field, value := range filter {
			conditions = append(conditions, qdrant.NewMatch(field, value))
		}
		qdrantFilter = &qdrant.Filter{Must: conditions}
	}

	limit := uint32(batchSize)
	var offset *qdrant.PointId
	firstBatch := true

	for {
		points, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
			CollectionName: collection,
			Filter:         qdrantFilter,
			Limit:          &limit,
			Offset:         offset,
			WithPayload:    qdrant.NewWithPayload(true),
		})
		if err != nil {
			if firstBatch {
				return s.scrollUnpaged(ctx, collection, qdrantFilter, fn)
			}
			logger.ErrorContext(ctx, "failed to scroll points", "collection", collection, "error", err)
			return fmt.Errorf("failed to scroll points: %w", err)
		}

		for i, point := range points {
			if !firstBatch && i == 0 {
				continue // inclusive offset repeats the previous tail
			}
			content, meta := splitPayload(point.Payload)
			if content == "" {
				continue
			}
			if !fn(Document{Content: content, Meta: meta}) {
				return nil
			}
		}

		if len(points) < batchSize {
			return nil
		}
		offset = points[len(points)-1].Id
		firstBatch = false
	}
}

// scrollUnpaged is the graceful fallback when paginated scrolling is not
// available: one fetch bounded well above any realistic corpus size.
func (s *QdrantStore) scrollUnpaged(ctx context.Context, collection string, filter *qdrant.Filter, fn func(Document) bool) error {
	logger := contextutil.LoggerFromContext(ctx)

	limit := uint32(100000)
	points, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: collection,
		Filter:         filter,
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to scroll points", "collection", collection, "error", err)
		return fmt.Errorf("failed to scroll points: %w", err)
	}

	for _, point := range points {
		content, meta := splitPayload(point.Payload)
		if content == "" {
			continue
		}
		if !fn(Document{Content: content, Meta: meta}) {
			return nil
		}
	}
	return nil
}

// Count returns the number of points in the collection.
func (s *QdrantStore) Count(ctx context.Context, collection string) (uint64, error) {
	count, err := s.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: collection,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count points: %w", err)
	}
	return count, nil
}

// CollectionExists checks if a collection exists.
func (s *QdrantStore) CollectionExists(ctx context.Context, collection string) (bool, error) {
	exists, err := s.client.CollectionExists(ctx, collection)
	if err != nil {
		return false, fmt.Errorf("failed to check collection existence: %w", err)
	}
	return exists, nil
}

// splitPayload pulls the document text out of a point payload and converts
// the remaining fields to a plain metadata map.
func splitPayload(payload map[string]*qdrant.Value) (string, map[string]any) {
	if payload == nil {
		return "", nil
	}

	var content string
	for _, key := range contentKeys {
		if value, ok := payload[key]; ok && value != nil {
			if text, ok := convertValue(value).(string); ok && text != "" {
				content = text
				break
			}
		}
	}

	meta := make(map[string]any, len(payload))
	for key, value := range payload {
		if value == nil || isContentKey(key) {
			continue
		}
		meta[key] = convertValue(value)
	}
	return content, meta
}

func isContentKey(key string) bool {
	for _, contentKey := range contentKeys {
		if key == contentKey {
			return true
		}
	}
	return false
}

// convertValue converts a Qdrant Value to a plain Go value.
func convertValue(v *qdrant.Value) any {
	switch val := v.Kind.(type) {
	case *qdrant.Value_BoolValue:
		return val.BoolValue
	case *qdrant.Value_IntegerValue:
		return val.IntegerValue
	case *qdrant.Value_DoubleValue:
		return val.DoubleValue
	case *qdrant.Value_StringValue:
		return val.StringValue
	case *qdrant.Value_ListValue:
		list := make([]any, len(val.ListValue.Values))
		for i, item := range val.ListValue.Values {
			list[i] = convertValue(item)
		}
		return list
	case *qdrant.Value_StructValue:
		nested := make(map[string]any, len(val.StructValue.Fields))
		for k, item := range val.StructValue.Fields {
			if item != nil {
				nested[k] = convertValue(item)
			}
		}
		return nested
	default:
		return nil
	}
}
