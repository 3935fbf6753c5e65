package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bdc/internal/config"
)

// datesCmd lists the snapshot dates that carry availability data, oldest
// first, so a config's as_of_date can be pinned.
var datesCmd = &cobra.Command{
	Use:   "dates",
	Short: "List published availability as-of dates",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return err
		}
		client, err := newClient(cfg)
		if err != nil {
			return err
		}
		dates, err := client.AvailabilityDates(cmd.Context())
		if err != nil {
			return err
		}
		for _, d := range dates {
			fmt.Println(d)
		}
		return nil
	},
}
