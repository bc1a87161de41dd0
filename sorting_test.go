package reviewserver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortParams_Empty(t *testing.T) {
	t.Parallel()

	assert.True(t, SortParams{}.Empty())
	assert.False(t, SortParams{Limit: 10}.Empty())
	assert.False(t, SortParams{By: `r."id"`}.Empty())
	assert.False(t, SortParams{Order: SortOrderAsc}.Empty())
}

func TestSortParams_SQL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		params   SortParams
		expected string
	}{
		{
			"empty params",
			SortParams{},
			"",
		},
		{
			"order by without direction",
			SortParams{
				By: `r."id"`,
			},
			` order by r."id"`,
		},
		{
			"order by with direction",
			SortParams{
				By:    `r."created"`,
				Order: SortOrderDesc,
			},
			` order by r."created" desc`,
		},
		{
			"order by with direction and limit",
			SortParams{
				By:    `r."id"`,
				Order: SortOrderAsc,
				Limit: 10,
			},
			` order by r."id" asc limit 10`,
		},
		{
			"limit only",
			SortParams{
				Limit: 5,
			},
			" limit 5",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.params.SQL())
		})
	}
}
