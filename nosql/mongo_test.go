package nosql

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestListDatabases(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("list", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "databases", Value: bson.A{
				bson.D{{Key: "name", Value: "admin"}, {Key: "sizeOnDisk", Value: int64(40960)}, {Key: "empty", Value: false}},
				bson.D{{Key: "name", Value: "logs"}, {Key: "sizeOnDisk", Value: int64(2101248)}, {Key: "empty", Value: false}},
			}},
			bson.E{Key: "totalSize", Value: int64(2142208)},
		))

		dbs, err := ListDatabases(context.Background(), mt.Client)
		assert.Nil(mt, err)
		assert.Equal(mt, []Database{
			{Name: "admin", SizeOnDisk: 40960},
			{Name: "logs", SizeOnDisk: 2101248},
		}, dbs)
	})

	mt.Run("error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code: 13, Name: "Unauthorized", Message: "not authorized on admin",
		}))

		_, err := ListDatabases(context.Background(), mt.Client)
		assert.NotNil(mt, err)
	})
}
