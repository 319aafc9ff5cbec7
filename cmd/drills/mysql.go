package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codingWhat/drills/sql/bands"
)

var fansCmd = &cobra.Command{
	Use:   "fans",
	Short: "Rank band origins by number of fans",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := bands.Open(config.MySQL)
		if err != nil {
			return err
		}
		ranks, err := bands.RankOriginsByFans(cmd.Context(), db)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "origin\tnb_fans")
		for _, r := range ranks {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", r.Origin, r.NbFans)
		}
		return nil
	},
}

var refYear int

var glamRockCmd = &cobra.Command{
	Use:   "glam-rock",
	Short: "List Glam rock bands ranked by longevity",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := bands.Open(config.MySQL)
		if err != nil {
			return err
		}
		spans, err := bands.GlamRockLifespans(cmd.Context(), db, refYear)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "band_name\tlifespan")
		for _, s := range spans {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", s.BandName, s.Lifespan)
		}
		return nil
	},
}

func init() {
	glamRockCmd.Flags().IntVar(&refYear, "year", bands.DefaultRefYear, "the year still active bands are measured up to")
}
