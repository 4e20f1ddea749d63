package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/internal/kernel"
	"github.com/shashiranjanraj/storefront/internal/server"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/schedule"
)

var reconcileWorkers int

// storefront serve
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, a, done, err := boot()
		if err != nil {
			return err
		}
		defer done()

		if err := a.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("ensure indexes: %w", err)
		}

		h, err := kernel.Handler(a)
		if err != nil {
			return err
		}

		jobs := schedule.New()
		if every := config.RatingsReconcileInterval(); every > 0 {
			jobs.Every(every).Name("ratings:reconcile").WithoutOverlapping().Run(func(ctx context.Context) error {
				n, err := a.Services.Reviews.RecomputeAll(ctx, reconcileWorkers)
				if err == nil {
					logger.Info("product ratings reconciled", "products", n)
				}
				return err
			})
		}
		jobsCtx, cancel := context.WithCancel(ctx)
		jobs.Start(jobsCtx)
		defer jobs.Wait()
		defer cancel()

		addr := net.JoinHostPort("", config.AppPort())
		logger.Info("storefront starting", "addr", addr, "env", config.AppEnv(), "db", config.DatabaseDriver())
		return server.Run(ctx, server.New(addr, h))
	},
}

// storefront route:list
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List all registered routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, a, done, err := boot()
		if err != nil {
			return err
		}
		defer done()

		r, err := kernel.Router(a)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "METHOD\tPATH\tNAME")
		fmt.Fprintln(w, "------\t----\t----")
		for _, ri := range r.Routes() {
			fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
		}
		return w.Flush()
	},
}

func init() {
	serveCmd.Flags().IntVar(&reconcileWorkers, "reconcile-workers", 4, "concurrent aggregations of the ratings reconcile job")
}
