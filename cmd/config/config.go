// Package config provides the "rpa config" command group.
package config

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/klytics/rpakit/internal/config"
	"github.com/klytics/rpakit/internal/output"
)

// NewCommand returns the config command group.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage rpa configuration",
		Long: `View and modify ~/.rpa/config.yaml.

Credentials can also come from the environment or a .env file:
NAVER_CLIENT_ID, NAVER_CLIENT_SECRET, OPENAI_API_KEY.`,
	}

	cmd.AddCommand(newInitCommand())
	cmd.AddCommand(newShowCommand())
	cmd.AddCommand(newSetCommand())
	cmd.AddCommand(newGetCommand())
	cmd.AddCommand(newResetCommand())
	cmd.AddCommand(newPathCommand())
	cmd.AddCommand(newValidateCommand())
	cmd.AddCommand(newEnvCommand())

	return cmd
}

func newInitCommand() *cobra.Command {
	var noInteractive bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Interactive setup wizard",
		RunE: func(cmd *cobra.Command, args []string) error {
			if noInteractive {
				if err := config.WizardNonInteractive(); err != nil {
					return err
				}
				fmt.Printf("Wrote defaults to %s\n", config.ConfigPath())
				return nil
			}
			return config.Wizard(cmd.InOrStdin())
		},
	}
	cmd.Flags().BoolVar(&noInteractive, "no-interactive", false, "Skip prompts, write defaults")
	return cmd
}

func newShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			if jsonFlag, _ := cmd.Flags().GetBool("json"); jsonFlag {
				cfg.APIKeys.OpenAI = maskValue(cfg.APIKeys.OpenAI)
				cfg.Naver.ClientSecret = maskValue(cfg.Naver.ClientSecret)
				return output.PrintJSON("config show", cfg)
			}

			fmt.Print(config.ShowConfig())
			return nil
		},
	}
}

func newSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "set <key> <value>",
		Short:   "Set a configuration value",
		Example: "  rpa config set search.query 노트북\n  rpa config set workbook.path ./genai_rpa.xlsx",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := config.Load(); err != nil {
				return err
			}
			if err := config.Set(args[0], args[1]); err != nil {
				return err
			}
			fmt.Printf("Set %s = %s\n", args[0], args[1])
			return nil
		},
	}
}

func newGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := config.Load(); err != nil {
				return err
			}
			val := config.Get(args[0])
			if val == "" {
				fmt.Printf("%s: (not set)\n", args[0])
			} else {
				fmt.Printf("%s: %s\n", args[0], val)
			}
			return nil
		},
	}
}

func newResetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Delete the config file and restore defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.ResetConfig(); err != nil {
				return err
			}
			fmt.Println("Configuration reset to defaults")
			return nil
		},
	}
}

func newPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(config.ConfigPath())
		},
	}
}

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check credentials and settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := config.Load(); err != nil {
				return err
			}
			issues := config.Validate()

			if jsonFlag, _ := cmd.Flags().GetBool("json"); jsonFlag {
				return output.PrintJSON("config validate", issues)
			}

			errCount, warnCount := 0, 0
			for _, issue := range issues {
				switch issue.Severity {
				case "error":
					errCount++
					color.New(color.FgRed).Printf("  ✗ %s\n", issue.Message)
				case "warning":
					warnCount++
					color.New(color.FgYellow).Printf("  ! %s\n", issue.Message)
				default:
					color.New(color.FgGreen).Printf("  ✓ %s\n", issue.Message)
				}
				if issue.Fix != "" {
					for _, line := range strings.Split(issue.Fix, "\n") {
						fmt.Printf("    Fix: %s\n", line)
					}
				}
			}

			fmt.Println()
			fmt.Printf("%d errors, %d warnings\n", errCount, warnCount)
			if errCount > 0 {
				return fmt.Errorf("configuration has %d error(s)", errCount)
			}
			return nil
		},
	}
}

func newEnvCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "Print configuration as shell exports",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := config.Load(); err != nil {
				return err
			}
			env := config.ToEnv()

			if jsonFlag, _ := cmd.Flags().GetBool("json"); jsonFlag {
				return output.PrintJSON("config env", env)
			}

			keys := make([]string, 0, len(env))
			for k := range env {
				keys = append(keys, k)
			}
			slices.Sort(keys)

			w := cmd.OutOrStdout()
			for _, k := range keys {
				fmt.Fprintf(w, "export %s=%q\n", k, env[k])
			}
			fmt.Fprintln(os.Stderr, "# or put them in a .env file next to the workbook")
			return nil
		},
	}
}

func maskValue(s string) string {
	if s == "" {
		return ""
	}
	return s[:min(4, len(s))] + "****"
}
