package main

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/ehr/intake/internal/config"
	"github.com/ehr/intake/internal/domain/catalog"
	"github.com/ehr/intake/internal/domain/intake"
	"github.com/ehr/intake/pkg/pagination"
)

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <field> <value>",
		Short: "Validate a single field value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			field, ok := intake.ParseField(args[0])
			if !ok {
				return fmt.Errorf("unknown field %q", args[0])
			}
			return printJSON(cmd, map[string]interface{}{
				"field":   field,
				"verdict": intake.Validate(field, args[1]),
			})
		},
	}
}

func maskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mask <type> <value>",
		Short: "Format a raw measurement the way the form does",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := intake.ParseMaskType(args[0])
			if err != nil {
				return err
			}
			m, err := intake.Mask(t, args[1])
			if err != nil {
				return err
			}
			return printJSON(cmd, m)
		},
	}
}

func catalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and seed the reference catalogues",
	}

	var limit int
	search := &cobra.Command{
		Use:   "search <kind> [query]",
		Short: "Search a catalogue",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := catalog.ParseKind(args[0])
			if err != nil {
				return err
			}
			query := ""
			if len(args) == 2 {
				query = args[1]
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			repo := catalog.NewMemoryRepo(nil)
			if cfg.HasDatabase() {
				pool, err := openPool(ctx, cfg)
				if err != nil {
					return err
				}
				defer pool.Close()
				repo = catalog.NewPGRepo(pool)
			}

			opts, total, err := catalog.NewService(repo).Search(ctx, kind, query, pagination.Params{Limit: limit})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, o := range opts {
				fmt.Fprintln(out, o.Label())
			}
			fmt.Fprintf(out, "%d of %d option(s)\n", len(opts), total)
			return nil
		},
	}
	search.Flags().IntVar(&limit, "limit", 20, "maximum number of options to print")
	cmd.AddCommand(search)

	cmd.AddCommand(&cobra.Command{
		Use:   "seed",
		Short: "Load the built-in catalogues into the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := openPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			n, err := catalog.NewPGRepo(pool).Seed(ctx, catalog.Fixtures())
			if err != nil {
				return fmt.Errorf("seed catalogues: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d option(s).\n", n)
			return nil
		},
	})

	return cmd
}
