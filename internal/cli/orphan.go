package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skysweep/skysweep/pkg/client"
)

func newOrphanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "orphans",
		Short:   "Inspect orphaned resources",
		Aliases: []string{"orphan"},
	}

	cmd.AddCommand(newOrphanListCmd())
	cmd.AddCommand(newOrphanSummaryCmd())

	return cmd
}

func newOrphanListCmd() *cobra.Command {
	var (
		resourceType string
		region       string
		tier         string
		page         int
		pageSize     int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List detected orphans with tier and accrued waste",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := &client.OrphanListOptions{
				ListOptions:  client.ListOptions{Page: page, PageSize: pageSize},
				ResourceType: resourceType,
				Region:       region,
				Tier:         tier,
			}

			result, err := apiClient.Orphans().List(context.Background(), opts)
			if err != nil {
				return err
			}

			if getOutputFormat() != "table" {
				return printOutput(result)
			}

			table := NewTable("ID", "TYPE", "REGION", "AGE", "TIER", "MONTHLY", "ACCRUED", "SCANNED")
			for _, o := range result.Data {
				accrued := "-"
				if o.AccruedCost != nil {
					accrued = formatMoney(*o.AccruedCost)
				}
				table.AddRow(
					truncate(o.ID, 24),
					o.ResourceType,
					o.Region,
					formatAge(o.AgeDays),
					formatTier(o.Tier),
					formatMoney(o.EstimatedMonthlyCost),
					accrued,
					formatScannedAt(o.ScannedAt),
				)
			}
			table.Render()

			if result.TotalPages > 1 {
				fmt.Printf("\nPage %d of %d (%d total)\n", result.Page, result.TotalPages, result.TotalItems)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&resourceType, "type", "", "filter by resource type")
	cmd.Flags().StringVar(&region, "region", "", "filter by region")
	cmd.Flags().StringVar(&tier, "tier", "", "filter by confidence tier (critical, high, medium, low)")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 20, "page size")

	return cmd
}

func newOrphanSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show aggregate waste statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := apiClient.Orphans().Summary(context.Background())
			if err != nil {
				return err
			}

			if getOutputFormat() != "table" {
				return printOutput(summary)
			}

			fmt.Printf("Resources:      %d\n", summary.TotalResources)
			fmt.Printf("Run rate:       %s/month\n", formatMoney(summary.MonthlyRunRate))
			fmt.Printf("Accrued waste:  %s\n", formatMoney(summary.AccruedWaste))
			if summary.UnknownAge > 0 {
				fmt.Printf("Unknown age:    %d\n", summary.UnknownAge)
			}
			if summary.DisabledSkipped > 0 {
				fmt.Printf("Rule disabled:  %d skipped\n", summary.DisabledSkipped)
			}

			fmt.Println("\nBy tier:")
			for _, tier := range []string{"critical", "high", "medium", "low"} {
				fmt.Printf("  %-14s %d\n", formatTier(tier), summary.TierCounts[tier])
			}
			return nil
		},
	}
}
