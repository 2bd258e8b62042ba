package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show waste summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			if format := getOutputFormat(); format != "table" {
				summary, err := apiClient.Orphans().Summary(ctx)
				if err != nil {
					return err
				}
				return printOutput(summary)
			}

			fmt.Println("SkySweep Dashboard")
			fmt.Println(strings.Repeat("=", 40))

			rules, err := apiClient.Rules().List(ctx)
			if err != nil {
				fmt.Printf("  Rules:          (error: %v)\n", err)
			} else {
				customized := 0
				for _, r := range rules {
					if r.Customized {
						customized++
					}
				}
				fmt.Printf("  Rules:          %d configured", len(rules))
				if customized > 0 {
					fmt.Printf(" (%d customized)", customized)
				}
				fmt.Println()
			}

			summary, err := apiClient.Orphans().Summary(ctx)
			if err != nil {
				fmt.Printf("  Orphans:        (error: %v)\n", err)
				return nil
			}

			fmt.Printf("  Orphans:        %d detected", summary.TotalResources)
			if critical := summary.TierCounts["critical"]; critical > 0 {
				fmt.Printf(" (%d critical)", critical)
			}
			fmt.Println()
			fmt.Printf("  Run rate:       %s/month\n", formatMoney(summary.MonthlyRunRate))
			fmt.Printf("  Accrued waste:  %s\n", formatMoney(summary.AccruedWaste))
			if summary.UnknownAge > 0 {
				fmt.Printf("  Unknown age:    %d resources\n", summary.UnknownAge)
			}

			return nil
		},
	}
}
