package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"archguard/internal/logging"
	"archguard/internal/policy"
	"archguard/internal/validation"
)

var (
	policyAuthor string
	policyForce  bool
)

var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Inspect and manage the review policy",
}

var policyCheckCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Validate a policy file",
	Long: `Loads the policy file and reports the first configuration problem, if any.
Unknown rule IDs, severities, glob patterns and @group references are errors.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPolicyCheck,
}

var policyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective policy as YAML",
	Long: `Prints the flattened policy. With --author the team overrides for that
member are applied first.`,
	Args: cobra.NoArgs,
	RunE: runPolicyShow,
}

var policyInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default policy to the policy path",
	Args:  cobra.NoArgs,
	RunE:  runPolicyInit,
}

func init() {
	policyShowCmd.Flags().StringVar(&policyAuthor, "author", "", "Resolve team overrides for this member")
	policyInitCmd.Flags().BoolVar(&policyForce, "force", false, "Overwrite an existing policy file")

	policyCmd.AddCommand(policyCheckCmd)
	policyCmd.AddCommand(policyShowCmd)
	policyCmd.AddCommand(policyInitCmd)
}

// loadPolicy reads the configured policy; a missing file yields the default.
func loadPolicy() (policy.Policy, error) {
	path := policyPath()
	p, err := policy.Load(path, validation.Catalog())
	if err != nil {
		return policy.Policy{}, err
	}
	logging.PolicyDebug("policy loaded from %s (%d teams)", path, len(p.Teams))
	return p, nil
}

func runPolicyCheck(cmd *cobra.Command, args []string) error {
	path := policyPath()
	if len(args) == 1 {
		path = resolvePath(args[0])
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("policy file %s: %w", path, err)
	}
	p, err := policy.Load(path, validation.Catalog())
	if err != nil {
		logger.Warn("policy rejected", zap.String("path", path), zap.Error(err))
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: OK (%d disabled, %d enabled, %d overrides, %d teams)\n",
		path, len(p.Rules.Disabled), len(p.Rules.Enabled), len(p.Rules.Severity), len(p.Teams))
	return nil
}

func runPolicyShow(cmd *cobra.Command, args []string) error {
	p, err := loadPolicy()
	if err != nil {
		return err
	}
	if policyAuthor != "" {
		if team, _, ok := p.TeamFor(policyAuthor); ok {
			logging.Policy("%s resolved to team %s", policyAuthor, team)
		}
		p = p.ForMember(policyAuthor)
	}
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal policy: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func runPolicyInit(cmd *cobra.Command, args []string) error {
	path := policyPath()
	if _, err := os.Stat(path); err == nil && !policyForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := policy.Default().Save(path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote default policy to %s\n", path)
	return nil
}
