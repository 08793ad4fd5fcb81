package main

import (
	"fmt"
	"time"

	"github.com/aouyang1/go-stockforest/event"

	"github.com/spf13/cobra"
)

type holidaysCmdConfig struct {
	*rootCmdConfig
	year int
}

func holidaysCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &holidaysCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "holidays",
		Short: "List exchange holidays",
		Long:  `List the London Stock Exchange closures of a year, the calendar used to roll portfolio rebalance dates.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			year := config.year
			if year == 0 {
				year = time.Now().Year()
			}
			start := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
			end := time.Date(year, 12, 31, 0, 0, 0, 0, time.UTC)
			for _, e := range event.NewLSECalendar().Holidays(start, end) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", e.Start.Format("2006-01-02"), e.Name)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&(config.year), "year", "y", 0, "year to list (defaults to the current year)")
	return cmd
}
