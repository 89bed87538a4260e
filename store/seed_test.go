package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/naveedm/natours/backend/store"
)

func TestSeed(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	defer mt.Close()

	mt.Run("seeds tours and users", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(), mtest.CreateSuccessResponse())

		err := store.Seed(context.Background(), mt.DB)
		require.NoError(mt, err)

		seeded := make(map[string]bool, 2)
		for i := 0; i < 2; i++ {
			evt := mt.GetStartedEvent()
			require.NotNil(mt, evt)
			assert.Equal(mt, "insert", evt.CommandName)
			seeded[evt.Command.Lookup("insert").StringValue()] = true
		}
		assert.True(mt, seeded[store.TourCollection])
		assert.True(mt, seeded[store.UserCollection])
	})

	mt.Run("server error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   1,
			Code:    123,
			Message: "server is down",
		}))

		err := store.Seed(context.Background(), mt.DB)
		assert.Error(mt, err)
	})
}
