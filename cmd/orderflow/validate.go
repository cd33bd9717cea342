package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/asaply/orderflow/internal/merchant"
)

func validateCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a merchant config for missing required keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := merchant.Load(configPath)
			if err != nil {
				return err
			}

			missing := cfg.Validate()
			if missing == nil {
				missing = []string{}
			}
			result := map[string]any{
				"ok":      len(missing) == 0,
				"missing": missing,
			}
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(result); err != nil {
				return err
			}
			if len(missing) > 0 {
				return fmt.Errorf("config %s is missing %d required key(s)", configPath, len(missing))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to the merchant config (JSON or YAML)")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}
