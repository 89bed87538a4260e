package web_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/naveedm/natours/backend/web"
)

func TestNewFeatures_Defaults(t *testing.T) {
	f, err := web.NewFeatures(url.Values{})
	require.NoError(t, err)

	assert.Equal(t, bson.D{}, f.Filter)
	assert.Equal(t, bson.D{primitive.E{Key: "createdAt", Value: -1}}, f.Sort)
	assert.Nil(t, f.Projection)
	assert.Equal(t, int64(0), f.Skip)
	assert.Equal(t, int64(100), f.Limit)
}

func TestNewFeatures_Filter(t *testing.T) {
	cases := []struct {
		description string
		params      url.Values
		want        bson.D
	}{
		{
			description: "equality keeps strings",
			params:      url.Values{"difficulty": []string{"easy"}},
			want:        bson.D{primitive.E{Key: "difficulty", Value: "easy"}},
		},
		{
			description: "comparison keyword becomes mongo operator",
			params:      url.Values{"duration[gte]": []string{"5"}},
			want: bson.D{primitive.E{
				Key:   "duration",
				Value: bson.D{primitive.E{Key: "$gte", Value: float64(5)}},
			}},
		},
		{
			description: "numeric values stay numeric",
			params:      url.Values{"price[lt]": []string{"1497.5"}},
			want: bson.D{primitive.E{
				Key:   "price",
				Value: bson.D{primitive.E{Key: "$lt", Value: 1497.5}},
			}},
		},
		{
			description: "boolean values are recognized",
			params:      url.Values{"secretTour": []string{"false"}},
			want:        bson.D{primitive.E{Key: "secretTour", Value: false}},
		},
		{
			description: "reserved names never filter",
			params:      url.Values{"page": []string{"2"}, "sort": []string{"price"}, "limit": []string{"5"}, "fields": []string{"name"}},
			want:        bson.D{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.description, func(t *testing.T) {
			f, err := web.NewFeatures(tc.params)
			require.NoError(t, err)
			assert.Equal(t, tc.want, f.Filter)
		})
	}
}

func TestNewFeatures_Sort(t *testing.T) {
	f, err := web.NewFeatures(url.Values{"sort": []string{"-ratingsAverage,price"}})
	require.NoError(t, err)

	want := bson.D{
		primitive.E{Key: "ratingsAverage", Value: -1},
		primitive.E{Key: "price", Value: 1},
	}
	assert.Equal(t, want, f.Sort)
}

func TestNewFeatures_Projection(t *testing.T) {
	f, err := web.NewFeatures(url.Values{"fields": []string{"name,price, difficulty"}})
	require.NoError(t, err)

	want := bson.D{
		primitive.E{Key: "name", Value: 1},
		primitive.E{Key: "price", Value: 1},
		primitive.E{Key: "difficulty", Value: 1},
	}
	assert.Equal(t, want, f.Projection)
}

func TestNewFeatures_Pagination(t *testing.T) {
	f, err := web.NewFeatures(url.Values{"page": []string{"3"}, "limit": []string{"10"}})
	require.NoError(t, err)

	assert.Equal(t, int64(20), f.Skip)
	assert.Equal(t, int64(10), f.Limit)
}

func TestNewFeatures_Invalid(t *testing.T) {
	cases := []struct {
		description string
		params      url.Values
	}{
		{"unknown operator", url.Values{"duration[near]": []string{"5"}}},
		{"malformed bracket", url.Values{"duration[gte": []string{"5"}}},
		{"page not a number", url.Values{"page": []string{"abc"}}},
		{"page negative", url.Values{"page": []string{"-1"}}},
		{"limit zero", url.Values{"limit": []string{"0"}}},
	}

	for _, tc := range cases {
		t.Run(tc.description, func(t *testing.T) {
			f, err := web.NewFeatures(tc.params)
			assert.Nil(t, f)
			assert.ErrorIs(t, err, web.ErrQueryParam)
		})
	}
}
