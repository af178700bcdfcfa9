package models_test

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"productapi/internal/models"
)

func TestNewProductFilter_PageAndLimitNormalization(t *testing.T) {
	tests := []struct {
		name      string
		page      string
		limit     string
		wantPage  int
		wantLimit int
	}{
		{"defaults", "", "", 1, 10},
		{"valid values", "3", "5", 3, 5},
		{"zero page", "0", "10", 1, 10},
		{"negative page", "-2", "10", 1, 10},
		{"non-numeric page", "abc", "10", 1, 10},
		{"zero limit", "1", "0", 1, 10},
		{"negative limit", "1", "-5", 1, 10},
		{"limit above ceiling", "1", "11", 1, 10},
		{"huge limit", "1", "10000", 1, 10},
		{"non-numeric limit", "1", "abc", 1, 10},
		{"limit at ceiling", "1", "10", 1, 10},
		{"limit at floor", "1", "1", 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, err := models.NewProductFilter(models.FilterInput{Page: tt.page, Limit: tt.limit})

			assert.NoError(t, err)
			assert.Equal(t, tt.wantPage, filter.Page)
			assert.Equal(t, tt.wantLimit, filter.Limit)
		})
	}
}

func TestProductFilter_Offset(t *testing.T) {
	filter, err := models.NewProductFilter(models.FilterInput{Page: "3", Limit: "5"})

	assert.NoError(t, err)
	assert.Equal(t, 10, filter.Offset())
}

func TestProductFilter_OffsetNeverOverflows(t *testing.T) {
	// (page-1)*limit on a near-max page would wrap negative; the offset must
	// instead land past the end of any result set.
	filter, err := models.NewProductFilter(models.FilterInput{Page: "9223372036854775807", Limit: "10"})

	assert.NoError(t, err)
	assert.Equal(t, math.MaxInt, filter.Offset())
	assert.GreaterOrEqual(t, filter.Offset(), 0)
}

func TestNewProductFilter_SearchNormalization(t *testing.T) {
	filter, err := models.NewProductFilter(models.FilterInput{Search: "  wireless   ergonomic  mouse "})

	assert.NoError(t, err)
	assert.Equal(t, "wireless ergonomic mouse", filter.Search)
}

func TestNewProductFilter_SearchLengthCountsRunes(t *testing.T) {
	// 100 multibyte characters exceed 100 bytes but stay within the limit.
	filter, err := models.NewProductFilter(models.FilterInput{Search: strings.Repeat("é", 100)})

	assert.NoError(t, err)
	assert.Equal(t, strings.Repeat("é", 100), filter.Search)
}

func TestNewProductFilter_SearchRejections(t *testing.T) {
	tests := []struct {
		name   string
		search string
	}{
		{"too long", strings.Repeat("a", 101)},
		{"too long multibyte", strings.Repeat("é", 101)},
		{"markup", "<script>alert(1)</script>"},
		{"single quote", "lap'top"},
		{"double quote", `lap"top`},
		{"semicolon", "laptop;drop table"},
		{"percent", "lap%top"},
		{"underscore", "lap_top"},
		{"dollar", "lap$top"},
		{"ampersand", "lap&top"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, err := models.NewProductFilter(models.FilterInput{Search: tt.search})

			assert.Nil(t, filter)
			var ve *models.ValidationError
			assert.ErrorAs(t, err, &ve)
			assert.Equal(t, "search", ve.Field)
		})
	}
}

func TestNewProductFilter_PriceBounds(t *testing.T) {
	filter, err := models.NewProductFilter(models.FilterInput{MinPrice: "0", MaxPrice: "999999999"})

	assert.NoError(t, err)
	assert.NotNil(t, filter.MinPrice)
	assert.NotNil(t, filter.MaxPrice)
	assert.Equal(t, 0.0, *filter.MinPrice)
	assert.Equal(t, 999999999.0, *filter.MaxPrice)

	// Absent bounds stay nil so they contribute no predicate.
	filter, err = models.NewProductFilter(models.FilterInput{})
	assert.NoError(t, err)
	assert.Nil(t, filter.MinPrice)
	assert.Nil(t, filter.MaxPrice)
}

func TestNewProductFilter_PriceBoundRejections(t *testing.T) {
	tests := []struct {
		name     string
		minPrice string
		maxPrice string
		field    string
	}{
		{"non-numeric min", "abc", "", "minPrice"},
		{"negative min", "-1", "", "minPrice"},
		{"min above ceiling", "1000000000", "", "minPrice"},
		{"non-numeric max", "", "abc", "maxPrice"},
		{"negative max", "", "-0.5", "maxPrice"},
		{"max above ceiling", "", "1000000000", "maxPrice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, err := models.NewProductFilter(models.FilterInput{MinPrice: tt.minPrice, MaxPrice: tt.maxPrice})

			assert.Nil(t, filter)
			var ve *models.ValidationError
			assert.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}
