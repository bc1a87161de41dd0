package weaviate

import (
	"context"
	"fmt"

	"github.com/go-openapi/strfmt"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/tasteboard/reviewserver"
)

func (a *Adapter) SaveDocuments(ctx context.Context, documents []reviewserver.Document, vectors []reviewserver.Vector) error {
	if len(documents) != len(vectors) {
		return fmt.Errorf("documents and vectors must have the same length")
	}

	// Convert our documents - along with their embedding vectors - into
	// types used by the Weaviate client library. Object IDs are derived
	// from the review row and chunk ordinal, so re-saving upserts.
	objects := make([]*models.Object, len(documents))
	for i, doc := range documents {
		if len(vectors[i]) == 0 {
			return fmt.Errorf("empty vector")
		}
		objects[i] = &models.Object{
			ID:    strfmt.UUID(doc.ObjectID().String()),
			Class: a.className,
			Properties: map[string]any{
				"content":   doc.Content,
				"review_id": int64(doc.ReviewID),
				"chunk":     doc.Chunk,
				"rating":    doc.Rating,
				"date":      doc.Date,
			},
			Vector: models.C11yVector(vectors[i]),
		}
	}

	_, err := a.client.Batch().ObjectsBatcher().WithObjects(objects...).Do(ctx)
	if err != nil {
		return err
	}

	a.logger.Sugar().Infof("stored %v objects in weaviate", len(objects))

	return nil
}

func (a *Adapter) SearchDocuments(ctx context.Context, vector reviewserver.Vector, limit int) ([]reviewserver.Document, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("vector is required for searching documents")
	}

	gql := a.client.GraphQL()
	nearVector := gql.NearVectorArgBuilder().WithVector([]float32(vector))

	graphqlResponse, err := gql.Get().
		WithNearVector(nearVector).
		WithClassName(a.className).
		WithFields(
			graphql.Field{Name: "content"},
			graphql.Field{Name: "review_id"},
			graphql.Field{Name: "chunk"},
			graphql.Field{Name: "rating"},
			graphql.Field{Name: "date"},
			graphql.Field{Name: "_additional", Fields: []graphql.Field{
				{Name: "certainty"},
			}},
		).
		WithLimit(limit).
		Do(ctx)
	if err := combinedWeaviateError(graphqlResponse, err); err != nil {
		return nil, err
	}

	return a.decodeGetDocumentResults(graphqlResponse)
}

func (a *Adapter) CountDocuments(ctx context.Context) (int64, error) {
	graphqlResponse, err := a.client.GraphQL().Aggregate().
		WithClassName(a.className).
		WithFields(graphql.Field{Name: "meta", Fields: []graphql.Field{
			{Name: "count"},
		}}).
		Do(ctx)
	if err := combinedWeaviateError(graphqlResponse, err); err != nil {
		return 0, err
	}

	data, ok := graphqlResponse.Data["Aggregate"]
	if !ok {
		return 0, fmt.Errorf("aggregate key not found in result")
	}
	agg, ok := data.(map[string]any)
	if !ok {
		return 0, fmt.Errorf("aggregate key unexpected type")
	}
	slc, ok := agg[a.className].([]any)
	if !ok || len(slc) == 0 {
		return 0, nil
	}
	smap, ok := slc[0].(map[string]any)
	if !ok {
		return 0, fmt.Errorf("invalid element in aggregate results")
	}
	meta, ok := smap["meta"].(map[string]any)
	if !ok {
		return 0, fmt.Errorf("expected meta in aggregate results")
	}
	count, ok := meta["count"].(float64)
	if !ok {
		return 0, fmt.Errorf("expected count in aggregate results")
	}

	return int64(count), nil
}

// decodeGetDocumentResults decodes the result returned by Weaviate's
// GraphQL Get query; these come back as nested map[string]any (just like
// JSON unmarshaled into a map[string]any).
func (a *Adapter) decodeGetDocumentResults(graphqlResponse *models.GraphQLResponse) ([]reviewserver.Document, error) {
	data, ok := graphqlResponse.Data["Get"]
	if !ok {
		return nil, fmt.Errorf("get key not found in result")
	}
	doc, ok := data.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("get key unexpected type")
	}
	slc, ok := doc[a.className].([]any)
	if !ok {
		return nil, fmt.Errorf("%s is not a list of results", a.className)
	}

	var out []reviewserver.Document
	for _, s := range slc {
		smap, ok := s.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("invalid element in list of documents")
		}
		content, ok := smap["content"].(string)
		if !ok {
			return nil, fmt.Errorf("expected content in document")
		}
		reviewID, ok := smap["review_id"].(float64)
		if !ok {
			return nil, fmt.Errorf("expected review_id in document")
		}
		chunk, ok := smap["chunk"].(float64)
		if !ok {
			return nil, fmt.Errorf("expected chunk in document")
		}
		rating, ok := smap["rating"].(float64)
		if !ok {
			return nil, fmt.Errorf("expected rating in document")
		}
		date, ok := smap["date"].(string)
		if !ok {
			return nil, fmt.Errorf("expected date in document")
		}

		aDocument := reviewserver.Document{
			Content:  content,
			ReviewID: reviewserver.ReviewID(int64(reviewID)),
			Chunk:    int(chunk),
			Rating:   rating,
			Date:     date,
		}

		if additional, ok := smap["_additional"].(map[string]any); ok {
			if certainty, ok := additional["certainty"].(float64); ok {
				aDocument.Score = certainty
			}
		}

		out = append(out, aDocument)
	}
	return out, nil
}

// combinedWeaviateError generates an error if err is non-nil or the
// response carries errors. Useful for the results of the Weaviate
// GraphQL API's "Do" calls.
func combinedWeaviateError(graphqlResponse *models.GraphQLResponse, err error) error {
	if err != nil {
		return err
	}
	if len(graphqlResponse.Errors) != 0 {
		var ss []string
		for _, e := range graphqlResponse.Errors {
			ss = append(ss, e.Message)
		}
		return fmt.Errorf("weaviate error: %v", ss)
	}
	return nil
}
