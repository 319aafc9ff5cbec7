package school

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type School struct {
	ID     primitive.ObjectID `bson:"_id,omitempty"`
	Name   string             `bson:"name"`
	Topics []string           `bson:"topics,omitempty"`
}

type Student struct {
	ID           primitive.ObjectID `bson:"_id"`
	Name         string             `bson:"name"`
	AverageScore float64            `bson:"averageScore"`
}

// InsertSchool inserts fields as a new document and returns its _id.
func InsertSchool(ctx context.Context, coll *mongo.Collection, fields bson.M) (interface{}, error) {
	res, err := coll.InsertOne(ctx, fields)
	if err != nil {
		return nil, errors.WithMessage(err, "insert school")
	}
	return res.InsertedID, nil
}

// UpdateTopics replaces the topics of every school called name and returns
// how many documents matched.
func UpdateTopics(ctx context.Context, coll *mongo.Collection, name string, topics []string) (int64, error) {
	res, err := coll.UpdateMany(ctx,
		bson.M{"name": name},
		bson.M{"$set": bson.M{"topics": topics}},
	)
	if err != nil {
		return 0, errors.WithMessagef(err, "update topics of %s", name)
	}
	return res.MatchedCount, nil
}

// SchoolsByTopic returns the schools whose topics contain topic.
func SchoolsByTopic(ctx context.Context, coll *mongo.Collection, topic string) ([]School, error) {
	cursor, err := coll.Find(ctx, bson.M{"topics": topic})
	if err != nil {
		return nil, errors.WithMessagef(err, "find topic %s", topic)
	}
	var schools []School
	if err := cursor.All(ctx, &schools); err != nil {
		return nil, err
	}
	return schools, nil
}

// TopStudents returns every student with the mean of topics.score, best first.
func TopStudents(ctx context.Context, coll *mongo.Collection) ([]Student, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$project", Value: bson.D{
			{Key: "name", Value: "$name"},
			{Key: "averageScore", Value: bson.D{{Key: "$avg", Value: "$topics.score"}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "averageScore", Value: -1}}}},
	}
	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, errors.WithMessage(err, "aggregate top students")
	}
	var students []Student
	if err := cursor.All(ctx, &students); err != nil {
		return nil, err
	}
	return students, nil
}
