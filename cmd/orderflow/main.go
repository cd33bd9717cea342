package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "orderflow",
	Short: "Drive storefront orders from structured plans",
	Long: `orderflow executes structured order plans against third-party web
storefronts using a per-merchant selector configuration. It adds items to the
cart, fills the checkout form, and verifies the order summary against the
plan. Runs always stop before payment submission.`,
	SilenceUsage: true,
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(merchantsCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("ORDERFLOW")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().String("cdp-url", "http://127.0.0.1:9222", "Chrome DevTools endpoint")
	rootCmd.PersistentFlags().String("merchant-db", ".orderflow/merchants.db", "merchant catalog database path")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	_ = viper.BindPFlag("cdp-url", rootCmd.PersistentFlags().Lookup("cdp-url"))
	_ = viper.BindPFlag("merchant-db", rootCmd.PersistentFlags().Lookup("merchant-db"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}
