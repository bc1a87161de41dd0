package redis

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/tasteboard/reviewserver"
)

func (a *Adapter) SaveDocuments(ctx context.Context, documents []reviewserver.Document, vectors []reviewserver.Vector) error {
	if len(documents) != len(vectors) {
		return fmt.Errorf("documents and vectors must have the same length")
	}

	for i, vector := range vectors {
		if len(vector) == 0 {
			return fmt.Errorf("empty vector")
		}
		// Keys are derived from review row and chunk ordinal, a re-save of
		// the same chunk overwrites the hash instead of duplicating it.
		// HSet reports only newly added fields, zero on an overwrite, so
		// there is nothing useful to assert about its return value.
		key := a.indexPrefix + documents[i].ObjectID().String()
		if err := a.client.HSet(ctx,
			key,
			map[string]any{
				"content":   documents[i].Content,
				"review_id": documents[i].ReviewID.String(),
				"chunk":     documents[i].Chunk,
				"rating":    documents[i].Rating,
				"date":      documents[i].Date,
				"embedding": floatsToBytes(vector),
			},
		).Err(); err != nil {
			return err
		}
	}

	return nil
}

func (a *Adapter) SearchDocuments(ctx context.Context, vector reviewserver.Vector, limit int) ([]reviewserver.Document, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("vector is required for searching documents")
	}

	query := fmt.Sprintf("*=>[KNN %d @embedding $vec AS vector_distance]", limit)

	// The results are ordered according to the value of the vector_distance
	// field, with the lowest distance indicating the greatest similarity
	// to the query.
	results, err := a.client.FTSearchWithArgs(ctx,
		a.indexName,
		query,
		&redis.FTSearchOptions{
			Return: []redis.FTSearchReturn{
				{FieldName: "vector_distance"},
				{FieldName: "content"},
				{FieldName: "review_id"},
				{FieldName: "chunk"},
				{FieldName: "rating"},
				{FieldName: "date"},
			},
			DialectVersion: a.dialectVersion,
			Params: map[string]any{
				"vec": floatsToBytes(vector),
			},
			SortBy: []redis.FTSearchSortBy{{FieldName: "vector_distance", Asc: true}},
			Limit:  limit,
		},
	).Result()
	if err != nil {
		return nil, err
	}

	return mapRedisDocuments(results.Docs)
}

func (a *Adapter) CountDocuments(ctx context.Context) (int64, error) {
	results, err := a.client.FTSearchWithArgs(ctx,
		a.indexName,
		"*",
		&redis.FTSearchOptions{
			DialectVersion: a.dialectVersion,
			LimitOffset:    0,
			Limit:          0,
		},
	).Result()
	if err != nil {
		return 0, err
	}

	return int64(results.Total), nil
}

func mapRedisDocuments(rds []redis.Document) ([]reviewserver.Document, error) {
	documents := make([]reviewserver.Document, 0, len(rds))

	for _, rd := range rds {
		aDocument, err := mapRedisDocument(rd)
		if err != nil {
			return nil, err
		}
		documents = append(documents, aDocument)
	}

	return documents, nil
}

func mapRedisDocument(rd redis.Document) (reviewserver.Document, error) {
	content, ok := rd.Fields["content"]
	if !ok {
		return reviewserver.Document{}, fmt.Errorf("missing content field in document")
	}

	reviewID, err := strconv.ParseInt(rd.Fields["review_id"], 10, 64)
	if err != nil {
		return reviewserver.Document{}, fmt.Errorf("invalid review_id: %v", err)
	}

	chunk, err := strconv.Atoi(rd.Fields["chunk"])
	if err != nil {
		return reviewserver.Document{}, fmt.Errorf("invalid chunk number: %v", err)
	}

	rating, err := strconv.ParseFloat(rd.Fields["rating"], 64)
	if err != nil {
		return reviewserver.Document{}, fmt.Errorf("invalid rating: %v", err)
	}

	aDocument := reviewserver.Document{
		Content:  content,
		ReviewID: reviewserver.ReviewID(reviewID),
		Chunk:    chunk,
		Rating:   rating,
		Date:     rd.Fields["date"],
	}

	if raw, ok := rd.Fields["vector_distance"]; ok {
		distance, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return reviewserver.Document{}, fmt.Errorf("invalid vector distance: %v", err)
		}
		// Distance to similarity, monotone decreasing in distance.
		aDocument.Score = 1.0 / (1.0 + distance)
	}

	return aDocument, nil
}

func floatsToBytes(fs []float32) []byte {
	buf := make([]byte, len(fs)*4)

	for i, f := range fs {
		u := math.Float32bits(f)
		binary.LittleEndian.PutUint32(buf[i*4:], u)
	}

	return buf
}
