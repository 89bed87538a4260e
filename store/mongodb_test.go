package store_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/naveedm/natours/backend/store"
	"github.com/naveedm/natours/backend/tests"
)

func TestStructToDoc(t *testing.T) {
	tTour := tests.NewTour()

	doc, err := store.StructToDoc(tTour)
	require.NoError(t, err)

	m := doc.Map()
	assert.Equal(t, tTour.Name, m["name"])
	assert.Equal(t, tTour.Slug, m["slug"])
	assert.Equal(t, tTour.ID, m["_id"])

	// omitempty fields are dropped from the document
	_, ok := m["priceDiscount"]
	assert.False(t, ok)
}

func TestDuplicateField(t *testing.T) {
	dupErr := mongo.WriteException{WriteErrors: mongo.WriteErrors{{
		Code:    11000,
		Message: "E11000 duplicate key error collection: natours.users index: email_1 dup key: { email: \"test@example.com\" }",
	}}}

	cases := []struct {
		description string
		err         error
		want        string
	}{
		{"nil error", nil, ""},
		{"unrelated error", errors.New("connection reset"), ""},
		{"duplicate key names the field", dupErr, "email"},
		{
			"duplicate key without index info",
			mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "duplicate key"}}},
			"value",
		},
	}

	for _, tc := range cases {
		t.Run(tc.description, func(t *testing.T) {
			assert.Equal(t, tc.want, store.DuplicateField(tc.err))
		})
	}
}

func TestStructToDoc_RoundTrip(t *testing.T) {
	tUser := tests.NewUser()

	doc, err := store.StructToDoc(tUser)
	require.NoError(t, err)

	data, err := bson.Marshal(doc)
	require.NoError(t, err)

	got := new(struct {
		Email    string `bson:"email"`
		Password string `bson:"password"`
		Active   bool   `bson:"active"`
	})
	require.NoError(t, bson.Unmarshal(data, got))
	assert.Equal(t, tUser.Email, got.Email)
	assert.Equal(t, tUser.HashedPassword, got.Password)
	assert.True(t, got.Active)
}
