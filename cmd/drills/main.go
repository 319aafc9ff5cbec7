package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/codingWhat/drills/conf"
	"github.com/codingWhat/drills/logger"
)

var (
	cfgFile string
	config  *conf.Config
	log     *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "drills",
	Short: "Small drills against Redis, MongoDB and MySQL",

	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		v := viper.New()
		_ = v.BindPFlag("log_level", cmd.Root().PersistentFlags().Lookup("log-level"))
		_ = v.BindPFlag("redis.addr", cmd.Root().PersistentFlags().Lookup("redis-addr"))
		_ = v.BindPFlag("redis.driver", cmd.Root().PersistentFlags().Lookup("redis-driver"))
		_ = v.BindPFlag("mongo.uri", cmd.Root().PersistentFlags().Lookup("mongo-uri"))
		_ = v.BindPFlag("mysql.dsn", cmd.Root().PersistentFlags().Lookup("mysql-dsn"))

		var err error
		if config, err = conf.LoadWith(v, cfgFile); err != nil {
			return err
		}
		log, err = logger.New(config.LogLevel)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "specifies a config file to load")
	flags.String("log-level", "info", "the log level to run at")
	flags.String("redis-addr", "localhost:6379", "the redis server address")
	flags.String("redis-driver", "goredis", "the redis client library, goredis or redigo")
	flags.String("mongo-uri", "mongodb://127.0.0.1:27017", "the mongodb connection string")
	flags.String("mysql-dsn", "", "the mysql data source name")

	rootCmd.AddCommand(
		storeCmd,
		pageCmd,
		serveCmd,
		databasesCmd,
		logStatsCmd,
		schoolsCmd,
		topStudentsCmd,
		fansCmd,
		glamRockCmd,
	)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
