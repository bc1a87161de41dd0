package sqlitevec

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/tasteboard/reviewserver"
)

func (a *Adapter) SaveDocuments(ctx context.Context, documents []reviewserver.Document, vectors []reviewserver.Vector) error {
	if len(documents) != len(vectors) {
		return fmt.Errorf("documents and vectors must have the same length")
	}

	for i, doc := range documents {
		if len(vectors[i]) == 0 {
			return fmt.Errorf("empty vector")
		}
		// Primary key is the deterministic chunk object ID, so a re-save
		// replaces the row instead of duplicating it.
		_, err := a.db.ExecContext(ctx, `
			insert or replace into "review_chunk" (
				"id", "review_id", "chunk", "content", "rating", "date", "embedding"
			)
			values (?, ?, ?, ?, ?, ?, ?)
		`,
			doc.ObjectID().String(),
			int64(doc.ReviewID),
			doc.Chunk,
			doc.Content,
			doc.Rating,
			doc.Date,
			encodeVector(vectors[i]),
		)
		if err != nil {
			return fmt.Errorf("saving review chunk: %w", err)
		}
	}

	a.logger.Sugar().Infof("stored %v chunks", len(documents))

	return nil
}

func (a *Adapter) SearchDocuments(ctx context.Context, vector reviewserver.Vector, limit int) ([]reviewserver.Document, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("vector is required for searching documents")
	}

	rows, err := a.db.QueryContext(ctx, `
		select
			"review_id",
			"chunk",
			"content",
			"rating",
			"date",
			vec_cosine("embedding", ?) as "score"
		from "review_chunk"
		order by "score" desc
		limit ?
	`, encodeVector(vector), limit)
	if err != nil {
		return nil, fmt.Errorf("searching review chunks: %w", err)
	}
	defer rows.Close()

	var documents []reviewserver.Document
	for rows.Next() {
		var (
			aDocument reviewserver.Document
			reviewID  int64
		)
		if err := rows.Scan(
			&reviewID,
			&aDocument.Chunk,
			&aDocument.Content,
			&aDocument.Rating,
			&aDocument.Date,
			&aDocument.Score,
		); err != nil {
			return nil, err
		}
		aDocument.ReviewID = reviewserver.ReviewID(reviewID)
		documents = append(documents, aDocument)
	}

	return documents, rows.Err()
}

func (a *Adapter) CountDocuments(ctx context.Context) (int64, error) {
	var count int64
	if err := a.db.QueryRowContext(ctx, `select count(*) from "review_chunk"`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// vecCosine is the scalar SQL function used for the KNN scan. Embeddings
// are little-endian float32 blobs.
func vecCosine(a, b []byte) (float64, error) {
	va, err := decodeVector(a)
	if err != nil {
		return 0, err
	}
	vb, err := decodeVector(b)
	if err != nil {
		return 0, err
	}
	if len(va) != len(vb) {
		return 0, fmt.Errorf("vec_cosine: dimension mismatch: %d vs %d", len(va), len(vb))
	}

	var dot, na, nb float64
	for i := range va {
		dot += float64(va[i]) * float64(vb[i])
		na += float64(va[i]) * float64(va[i])
		nb += float64(vb[i]) * float64(vb[i])
	}
	if na == 0 || nb == 0 {
		return 0, nil
	}

	return dot / (math.Sqrt(na) * math.Sqrt(nb)), nil
}

func encodeVector(fs []float32) []byte {
	buf := make([]byte, len(fs)*4)
	for i, f := range fs {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("invalid embedding blob length: %d", len(b))
	}
	fs := make([]float32, len(b)/4)
	for i := range fs {
		fs[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return fs, nil
}
