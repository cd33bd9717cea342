package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/asaply/orderflow/internal/engine"
	"github.com/asaply/orderflow/internal/merchant"
	"github.com/asaply/orderflow/internal/plan"
	"github.com/asaply/orderflow/internal/session"
)

func runCmd() *cobra.Command {
	var (
		planPath    string
		configPath  string
		renderDelay time.Duration
		waitTimeout time.Duration
		timeout     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute an order plan against a merchant config",
		RunE: func(cmd *cobra.Command, args []string) error {
			orderPlan, err := plan.Load(planPath)
			if err != nil {
				return err
			}
			cfg, err := merchant.Load(configPath)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			// The execution log is the caller-facing contract; it goes to
			// stdout unprefixed so `[verify] RESULT:` lines stay greppable.
			execLog := log.New(os.Stdout, "", 0)

			execLog.Printf("[executor] Go to %s", cfg.BaseURL)
			sess, err := session.Open(ctx, cfg.BaseURL, session.Options{
				CDPBaseURL:  viper.GetString("cdp-url"),
				RenderDelay: renderDelay,
				WaitTimeout: waitTimeout,
			})
			if err != nil {
				return err
			}
			defer sess.Close()

			_, err = engine.New(sess, execLog).Execute(ctx, cfg, orderPlan)
			return err
		},
	}

	cmd.Flags().StringVar(&planPath, "plan", "", "path to the order plan (JSON or YAML)")
	cmd.Flags().StringVar(&configPath, "config", "", "path to the merchant config (JSON or YAML)")
	cmd.Flags().DurationVar(&renderDelay, "render-delay", 2*time.Second, "settle delay after initial navigation")
	cmd.Flags().DurationVar(&waitTimeout, "wait-timeout", 12*time.Second, "visibility wait bound per driver action")
	cmd.Flags().DurationVar(&timeout, "timeout", 3*time.Minute, "overall execution deadline")
	_ = cmd.MarkFlagRequired("plan")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}
