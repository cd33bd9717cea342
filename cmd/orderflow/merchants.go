package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/asaply/orderflow/internal/merchant"
)

func merchantsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merchants",
		Short: "Manage the local merchant catalog",
	}
	cmd.AddCommand(merchantsListCmd())
	cmd.AddCommand(merchantsImportCmd())
	cmd.AddCommand(merchantsShowCmd())
	cmd.AddCommand(merchantsDeleteCmd())
	return cmd
}

func withMerchantStore(fn func(ctx context.Context, store *merchant.SQLiteStore) error) error {
	store, err := merchant.OpenStore(viper.GetString("merchant-db"))
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(context.Background(), store)
}

func merchantsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored merchant configs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMerchantStore(func(ctx context.Context, store *merchant.SQLiteStore) error {
				configs, err := store.List(ctx)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(configs)
				}

				t := table.NewWriter()
				t.SetOutputMirror(os.Stdout)
				t.AppendHeader(table.Row{"ID", "Name", "Base URL", "Items", "Complete"})
				for _, cfg := range configs {
					t.AppendRow(table.Row{
						cfg.ID,
						cfg.Name,
						cfg.BaseURL,
						len(cfg.ItemSelectorNames()),
						len(cfg.Validate()) == 0,
					})
				}
				t.Render()
				return nil
			})
		},
	}
}

func merchantsImportCmd() *cobra.Command {
	var filePath string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a merchant config file into the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := merchant.Load(filePath)
			if err != nil {
				return err
			}
			return withMerchantStore(func(ctx context.Context, store *merchant.SQLiteStore) error {
				created, err := store.Create(ctx, cfg)
				if err != nil {
					return err
				}
				fmt.Printf("imported merchant %s (%s)\n", created.ID, created.Name)
				if missing := created.Validate(); len(missing) > 0 {
					fmt.Printf("warning: config is missing %v\n", missing)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&filePath, "file", "", "path to the merchant config (JSON or YAML)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func merchantsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <merchant-id>",
		Short: "Print one stored merchant config",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMerchantStore(func(ctx context.Context, store *merchant.SQLiteStore) error {
				cfg, err := store.Get(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(cfg)
			})
		},
	}
}

func merchantsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <merchant-id>",
		Short: "Delete a stored merchant config",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMerchantStore(func(ctx context.Context, store *merchant.SQLiteStore) error {
				if err := store.Delete(ctx, args[0]); err != nil {
					return err
				}
				fmt.Printf("deleted merchant %s\n", args[0])
				return nil
			})
		},
	}
}

func printJSON(value any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
