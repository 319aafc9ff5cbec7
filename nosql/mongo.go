package nosql

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/codingWhat/drills/conf"
)

// Connect dials c.URI and pings the primary once.
func Connect(ctx context.Context, c conf.Mongo) (*mongo.Client, error) {
	cli, err := mongo.Connect(ctx, options.Client().ApplyURI(c.URI))
	if err != nil {
		return nil, errors.WithMessagef(err, "connect %s", c.URI)
	}
	if err := cli.Ping(ctx, nil); err != nil {
		_ = cli.Disconnect(context.Background())
		return nil, errors.WithMessagef(err, "ping %s", c.URI)
	}
	return cli, nil
}

// Database is one entry of the listDatabases admin command.
type Database struct {
	Name       string `bson:"name"`
	SizeOnDisk int64  `bson:"sizeOnDisk"`
	Empty      bool   `bson:"empty"`
}

// ListDatabases is the driver side of `show dbs`.
func ListDatabases(ctx context.Context, cli *mongo.Client) ([]Database, error) {
	res, err := cli.ListDatabases(ctx, bson.D{})
	if err != nil {
		return nil, errors.WithMessage(err, "list databases")
	}
	dbs := make([]Database, 0, len(res.Databases))
	for _, spec := range res.Databases {
		dbs = append(dbs, Database{Name: spec.Name, SizeOnDisk: spec.SizeOnDisk, Empty: spec.Empty})
	}
	return dbs, nil
}
