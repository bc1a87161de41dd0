package weaviate

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/tasteboard/reviewserver"
)

func TestDecodeGetDocumentResults(t *testing.T) {
	t.Parallel()

	adapter := &Adapter{className: defaultClassName}

	tests := []struct {
		title       string
		given       *models.GraphQLResponse
		expected    []reviewserver.Document
		expectedErr error
	}{
		{
			"Missing Get key",
			&models.GraphQLResponse{
				Data: map[string]models.JSONObject{},
			},
			nil,
			fmt.Errorf("get key not found in result"),
		},
		{
			"Valid results",
			&models.GraphQLResponse{
				Data: map[string]models.JSONObject{
					"Get": map[string]any{
						"ReviewChunk": []any{
							map[string]any{
								"content":   "Title: Amazing Pizza Review: Great crust.",
								"review_id": float64(1),
								"chunk":     float64(0),
								"rating":    float64(5),
								"date":      "2024-05-20",
								"_additional": map[string]any{
									"certainty": 0.92,
								},
							},
							map[string]any{
								"content":   "Title: Great Value Review: Cheap lunch menu.",
								"review_id": float64(3),
								"chunk":     float64(1),
								"rating":    float64(4),
								"date":      "2024-05-22",
							},
						},
					},
				},
			},
			[]reviewserver.Document{
				{
					Content:  "Title: Amazing Pizza Review: Great crust.",
					ReviewID: 1,
					Chunk:    0,
					Rating:   5,
					Date:     "2024-05-20",
					Score:    0.92,
				},
				{
					Content:  "Title: Great Value Review: Cheap lunch menu.",
					ReviewID: 3,
					Chunk:    1,
					Rating:   4,
					Date:     "2024-05-22",
				},
			},
			nil,
		},
		{
			"Missing content field",
			&models.GraphQLResponse{
				Data: map[string]models.JSONObject{
					"Get": map[string]any{
						"ReviewChunk": []any{
							map[string]any{
								"review_id": float64(1),
							},
						},
					},
				},
			},
			nil,
			fmt.Errorf("expected content in document"),
		},
	}

	for i, tc := range tests {
		t.Run(fmt.Sprintf("#%v_%v", i, tc.title), func(t *testing.T) {
			actual, err := adapter.decodeGetDocumentResults(tc.given)
			if tc.expectedErr != nil {
				require.Error(t, err)
				assert.Equal(t, tc.expectedErr, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, actual)
		})
	}
}
