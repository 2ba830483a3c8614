package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"kernc/internal/diag"
)

func newCacheCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the composed-runtime cache",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every cached runtime from the configured store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.openStore(cmd.Context())
			if err != nil {
				return diag.WithCode(diag.IOCache, err)
			}
			n, err := cacheFor(a, store).Clear(cmd.Context())
			if err != nil {
				return diag.WithCode(diag.IOCache, err)
			}
			if !a.quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "removed %d cached runtime(s)\n", n)
			}
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the local cache directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfg.Cache.Remote != "none" {
				return errors.New("cache is remote (" + a.cfg.Cache.Remote + "); there is no local directory")
			}
			dir, err := a.cfg.CacheDir()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	})
	return cmd
}
