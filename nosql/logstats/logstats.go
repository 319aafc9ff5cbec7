package logstats

import (
	"context"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Methods are reported in this order.
var Methods = []string{"GET", "POST", "PUT", "PATCH", "DELETE"}

const DefaultTopIPs = 10

type MethodCount struct {
	Method string
	Count  int64
}

type IPCount struct {
	IP    string `bson:"_id"`
	Count int64  `bson:"count"`
}

// Stats summarises an nginx access log collection (logs.nginx).
type Stats struct {
	Total       int64
	Methods     []MethodCount
	StatusCheck int64 // GET /status
	TopIPs      []IPCount
}

// Collect counts documents per method and the GET /status checks, and ranks
// the topIPs busiest client addresses. topIPs <= 0 skips the ranking.
func Collect(ctx context.Context, coll *mongo.Collection, topIPs int) (*Stats, error) {
	stats := &Stats{}

	var err error
	if stats.Total, err = coll.CountDocuments(ctx, bson.D{}); err != nil {
		return nil, errors.WithMessage(err, "count logs")
	}
	for _, method := range Methods {
		n, err := coll.CountDocuments(ctx, bson.D{{Key: "method", Value: method}})
		if err != nil {
			return nil, errors.WithMessagef(err, "count method %s", method)
		}
		stats.Methods = append(stats.Methods, MethodCount{Method: method, Count: n})
	}
	stats.StatusCheck, err = coll.CountDocuments(ctx, bson.D{
		{Key: "method", Value: "GET"},
		{Key: "path", Value: "/status"},
	})
	if err != nil {
		return nil, errors.WithMessage(err, "count status check")
	}

	if topIPs > 0 {
		if stats.TopIPs, err = topClientIPs(ctx, coll, topIPs); err != nil {
			return nil, err
		}
	}
	return stats, nil
}

func topClientIPs(ctx context.Context, coll *mongo.Collection, limit int) ([]IPCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$ip"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}}}},
		{{Key: "$limit", Value: limit}},
	}
	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, errors.WithMessage(err, "aggregate ips")
	}
	var ips []IPCount
	if err := cursor.All(ctx, &ips); err != nil {
		return nil, err
	}
	return ips, nil
}

// Print writes the report:
//
//	94778 logs
//	Methods:
//		method GET: 93842
//		...
//	47415 status check
//	IPs:
//		172.31.63.67: 15805
func (s *Stats) Print(w io.Writer) error {
	lines := []string{fmt.Sprintf("%d logs", s.Total), "Methods:"}
	for _, m := range s.Methods {
		lines = append(lines, fmt.Sprintf("\tmethod %s: %d", m.Method, m.Count))
	}
	lines = append(lines, fmt.Sprintf("%d status check", s.StatusCheck))
	if s.TopIPs != nil {
		lines = append(lines, "IPs:")
		for _, ip := range s.TopIPs {
			lines = append(lines, fmt.Sprintf("\t%s: %d", ip.IP, ip.Count))
		}
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
