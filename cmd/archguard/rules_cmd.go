package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"archguard/internal/report"
	"archguard/internal/validation"
)

var rulesColor string

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the rule catalogue",
	Long: `Lists every rule with its finding type, base severity, the stricter
severity applied to critical files, and whether it runs by default.
Opt-in rules run only when named in rules.enabled or a team's additionalRules.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		color, err := colorEnabled(rulesColor, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), report.Rules(validation.Rules(), color))
		return err
	},
}

func init() {
	rulesCmd.Flags().StringVar(&rulesColor, "color", "auto", "Styled output: auto, always, never")
}
