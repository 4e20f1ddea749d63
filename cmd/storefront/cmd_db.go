package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/storefront/database/seeders"
	"github.com/shashiranjanraj/storefront/pkg/auth"
)

// storefront db:index
var dbIndexCmd = &cobra.Command{
	Use:   "db:index",
	Short: "Create the MongoDB indexes (unique email, one review per user and product)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, a, done, err := boot()
		if err != nil {
			return err
		}
		defer done()

		if a.Mongo == nil {
			fmt.Println("DB_DRIVER=memory: nothing to index.")
			return nil
		}
		if err := a.EnsureIndexes(ctx); err != nil {
			return err
		}
		fmt.Println("✅ Indexes are in place.")
		return nil
	},
}

// storefront seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Run all database seeders",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, a, done, err := boot()
		if err != nil {
			return err
		}
		defer done()

		fmt.Println("Running seeders…")
		return seeders.RunAll(ctx, a.Store, os.Stdout)
	},
}

var promoteRole string

// storefront user:promote
var userPromoteCmd = &cobra.Command{
	Use:   "user:promote EMAIL",
	Short: "Set the role of an existing user (default admin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, a, done, err := boot()
		if err != nil {
			return err
		}
		defer done()

		u, err := a.Services.Users.Promote(ctx, args[0], auth.Role(promoteRole))
		if err != nil {
			return err
		}
		fmt.Printf("✅ %s is now %s\n", u.Email, u.Role)
		return nil
	},
}

var recomputeWorkers int

// storefront ratings:recompute
var ratingsRecomputeCmd = &cobra.Command{
	Use:   "ratings:recompute",
	Short: "Recompute every product rating from its reviews",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, a, done, err := boot()
		if err != nil {
			return err
		}
		defer done()

		n, err := a.Services.Reviews.RecomputeAll(ctx, recomputeWorkers)
		if err != nil {
			return err
		}
		fmt.Printf("✅ Recomputed ratings of %d products\n", n)
		return nil
	},
}

func init() {
	userPromoteCmd.Flags().StringVar(&promoteRole, "role", string(auth.RoleAdmin), "role to assign (admin or user)")
	ratingsRecomputeCmd.Flags().IntVar(&recomputeWorkers, "workers", 4, "concurrent aggregations")
}
