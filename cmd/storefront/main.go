// Command storefront runs the storefront API and its maintenance tasks.
//
//	storefront serve               start the HTTP server
//	storefront route:list          print the route table
//	storefront db:index            create the MongoDB indexes
//	storefront seed                run the database seeders
//	storefront user:promote EMAIL  change a user's role
//	storefront ratings:recompute   rebuild every product rating
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/storefront/pkg/app"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "storefront",
	Short:         "Storefront e-commerce API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routeListCmd)

	rootCmd.AddCommand(dbIndexCmd)
	rootCmd.AddCommand(seedCmd)

	rootCmd.AddCommand(userPromoteCmd)
	rootCmd.AddCommand(ratingsRecomputeCmd)
}

// boot opens the application for a command and returns a context that is
// cancelled on SIGINT or SIGTERM.
func boot() (context.Context, *app.App, func(), error) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	a, err := app.Boot(ctx)
	if err != nil {
		stop()
		return nil, nil, nil, err
	}
	return ctx, a, func() {
		a.Close()
		stop()
	}, nil
}
