package cli

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"
)

func newRuleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rules",
		Short:   "Manage detection rules",
		Aliases: []string{"rule"},
	}

	cmd.AddCommand(newRuleListCmd())
	cmd.AddCommand(newRuleGetCmd())
	cmd.AddCommand(newRuleSetCmd())
	cmd.AddCommand(newRuleResetCmd())
	cmd.AddCommand(newRuleResetAllCmd())

	return cmd
}

func newRuleListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all detection rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			rules, err := apiClient.Rules().List(context.Background())
			if err != nil {
				return err
			}

			if getOutputFormat() != "table" {
				return printOutput(rules)
			}

			table := NewTable("RESOURCE TYPE", "ENABLED", "THRESHOLD", "CUSTOMIZED", "DESCRIPTION")
			for _, r := range rules {
				enabled := "yes"
				if v, ok := r.CurrentSettings["enabled"].(bool); ok && !v {
					enabled = "no"
				}
				threshold := "-"
				if r.ThresholdKey != "" {
					threshold = fmt.Sprintf("%s=%d", r.ThresholdKey, r.ThresholdDays)
				}
				customized := ""
				if r.Customized {
					customized = "*"
				}
				table.AddRow(r.ResourceType, enabled, threshold, customized, truncate(r.Description, 40))
			}
			table.Render()
			return nil
		},
	}
}

func newRuleGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <resource-type>",
		Short: "Show one rule's current and default settings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rule, err := apiClient.Rules().Get(context.Background(), args[0])
			if err != nil {
				return err
			}

			if getOutputFormat() != "table" {
				return printOutput(rule)
			}

			fmt.Printf("Rule: %s\n", rule.ResourceType)
			if rule.Description != "" {
				fmt.Printf("Description: %s\n", rule.Description)
			}
			fmt.Printf("Customized: %v\n\n", rule.Customized)

			keys := make([]string, 0, len(rule.CurrentSettings))
			for k := range rule.CurrentSettings {
				keys = append(keys, k)
			}
			for k := range rule.DefaultSettings {
				if _, ok := rule.CurrentSettings[k]; !ok {
					keys = append(keys, k)
				}
			}
			sort.Strings(keys)

			table := NewTable("SETTING", "CURRENT", "DEFAULT")
			for _, k := range keys {
				table.AddRow(k,
					formatSettingValue(rule.CurrentSettings[k]),
					formatSettingValue(rule.DefaultSettings[k]))
			}
			table.Render()
			return nil
		},
	}
}

func newRuleSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <resource-type> <key> <value>",
		Short: "Set one setting on a rule",
		Long: `Set one setting on a detection rule. The value is interpreted as a
boolean if it is "true" or "false", as a number if it parses as one,
and as a string otherwise.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			resourceType, key, raw := args[0], args[1], args[2]

			rule, err := apiClient.Rules().UpdateSetting(
				context.Background(), resourceType, key, parseSettingValue(raw))
			if err != nil {
				return err
			}

			if getOutputFormat() != "table" {
				return printOutput(rule)
			}

			fmt.Printf("Updated %s: %s = %s\n", resourceType, key,
				formatSettingValue(rule.CurrentSettings[key]))
			return nil
		},
	}
}

func newRuleResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset <resource-type>",
		Short: "Restore a rule to its factory defaults",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rule, err := apiClient.Rules().Reset(context.Background(), args[0])
			if err != nil {
				return err
			}

			if getOutputFormat() != "table" {
				return printOutput(rule)
			}

			fmt.Printf("Reset %s to factory defaults\n", rule.ResourceType)
			return nil
		},
	}
}

func newRuleResetAllCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset-all",
		Short: "Restore every rule to its factory defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				fmt.Print("Reset all rules to factory defaults? [y/N]: ")
				var answer string
				fmt.Scanln(&answer)
				if answer != "y" && answer != "Y" {
					fmt.Println("Aborted")
					return nil
				}
			}

			count, err := apiClient.Rules().ResetAll(context.Background())
			if err != nil {
				return err
			}

			fmt.Printf("Reset %d customized rule(s)\n", count)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation")
	return cmd
}

// parseSettingValue interprets a CLI argument as bool, number, or string.
func parseSettingValue(raw string) interface{} {
	switch raw {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	return raw
}

func formatSettingValue(v interface{}) string {
	if v == nil {
		return "-"
	}
	switch val := v.(type) {
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
