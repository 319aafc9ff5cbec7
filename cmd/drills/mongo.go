package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/codingWhat/drills/nosql"
	"github.com/codingWhat/drills/nosql/logstats"
	"github.com/codingWhat/drills/nosql/school"
)

func withMongo(cmd *cobra.Command, fn func(ctx context.Context, cli *mongo.Client) error) error {
	ctx := cmd.Context()
	cli, err := nosql.Connect(ctx, config.Mongo)
	if err != nil {
		return err
	}
	defer func() { _ = cli.Disconnect(context.Background()) }()
	return fn(ctx, cli)
}

var databasesCmd = &cobra.Command{
	Use:   "databases",
	Short: "List mongodb databases",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMongo(cmd, func(ctx context.Context, cli *mongo.Client) error {
			dbs, err := nosql.ListDatabases(ctx, cli)
			if err != nil {
				return err
			}
			for _, db := range dbs {
				fmt.Fprintf(cmd.OutOrStdout(), "%-20s %.3fGB\n", db.Name, float64(db.SizeOnDisk)/(1<<30))
			}
			return nil
		})
	},
}

var logStatsIPs bool

var logStatsCmd = &cobra.Command{
	Use:   "logstats",
	Short: "Print nginx log statistics from logs.nginx",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMongo(cmd, func(ctx context.Context, cli *mongo.Client) error {
			top := 0
			if logStatsIPs {
				top = logstats.DefaultTopIPs
			}
			stats, err := logstats.Collect(ctx, cli.Database("logs").Collection("nginx"), top)
			if err != nil {
				return err
			}
			return stats.Print(cmd.OutOrStdout())
		})
	},
}

var (
	schoolDB   string
	schoolColl string
	topic      string
)

var schoolsCmd = &cobra.Command{
	Use:   "schools",
	Short: "List schools teaching a topic",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMongo(cmd, func(ctx context.Context, cli *mongo.Client) error {
			schools, err := school.SchoolsByTopic(ctx, cli.Database(schoolDB).Collection(schoolColl), topic)
			if err != nil {
				return err
			}
			for _, s := range schools {
				fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s %v\n", s.ID.Hex(), s.Name, s.Topics)
			}
			return nil
		})
	},
}

var topStudentsCmd = &cobra.Command{
	Use:   "top-students",
	Short: "List students by average score",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMongo(cmd, func(ctx context.Context, cli *mongo.Client) error {
			students, err := school.TopStudents(ctx, cli.Database(schoolDB).Collection("students"))
			if err != nil {
				return err
			}
			for _, s := range students {
				fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s => %v\n", s.ID.Hex(), s.Name, s.AverageScore)
			}
			return nil
		})
	},
}

func init() {
	logStatsCmd.Flags().BoolVar(&logStatsIPs, "ips", true, "also print the 10 most frequent client IPs")

	for _, cmd := range []*cobra.Command{schoolsCmd, topStudentsCmd} {
		cmd.Flags().StringVar(&schoolDB, "db", "my_db", "the database holding the school collections")
	}
	schoolsCmd.Flags().StringVar(&schoolColl, "collection", "school", "the school collection")
	schoolsCmd.Flags().StringVar(&topic, "topic", "Python", "the topic to look for")
}
