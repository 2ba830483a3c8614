package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"kernc/internal/cache"
	"kernc/internal/diag"
	"kernc/internal/link"
)

type runtimeOptions struct {
	targets []string
	output  string
	noCache bool
	device  bool
	jobs    int
}

func newRuntimeCmd(a *app) *cobra.Command {
	var opts runtimeOptions
	cmd := &cobra.Command{
		Use:   "runtime",
		Short: "Compose the runtime module for one or more targets",
		Long: `Compose links the runtime modules selected for each target into one LLVM module.
With a single target the result goes to -o (stdout by default). With several
targets -o names a directory that receives one <target>.ll per target.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRuntime(cmd, a, opts)
		},
	}
	cmd.Flags().StringArrayVar(&opts.targets, "target", nil, "target override string (repeatable)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file, or directory with several targets")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "always compose, bypassing the runtime cache")
	cmd.Flags().BoolVar(&opts.device, "device", false, "compose the GPU device library instead of the host runtime")
	cmd.Flags().IntVar(&opts.jobs, "jobs", 0, "parallel compositions (0 = one per target)")
	return cmd
}

type runtimeResult struct {
	target string
	unit   *link.Unit
	cached bool
}

func runRuntime(cmd *cobra.Command, a *app, opts runtimeOptions) error {
	ctx := cmd.Context()
	raws := opts.targets
	if len(raws) == 0 {
		raws = []string{""}
	}

	if len(raws) > 1 && opts.output == "-" {
		return fmt.Errorf("-o - needs a single --target; got %d", len(raws))
	}

	var c *cache.Cache
	if !opts.noCache && !opts.device {
		c = a.openCache(ctx)
	}

	results := make([]runtimeResult, len(raws))
	g, gctx := errgroup.WithContext(ctx)
	if opts.jobs > 0 {
		g.SetLimit(opts.jobs)
	}
	for i, raw := range raws {
		g.Go(func() error {
			r, err := composeOne(gctx, a, raw, c, opts.device)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if len(results) == 1 && !isDir(opts.output) {
		return writeUnit(cmd, a, results[0], opts.output)
	}
	dir := opts.output
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return diag.WithCode(diag.IOOutput, err)
	}
	for _, r := range results {
		if err := writeUnit(cmd, a, r, filepath.Join(dir, fileNameFor(r.target, opts.device))); err != nil {
			return err
		}
	}
	return nil
}

func composeOne(ctx context.Context, a *app, raw string, c *cache.Cache, device bool) (runtimeResult, error) {
	s := a.session(raw, c)
	t, _, err := s.EffectiveTarget(ctx)
	if err != nil {
		return runtimeResult{}, err
	}
	if device {
		u, err := s.ComposeDevice(ctx, t)
		if err != nil {
			return runtimeResult{}, fmt.Errorf("%s: %w", t, err)
		}
		return runtimeResult{target: t.String(), unit: u}, nil
	}
	u, cached, err := s.Compose(ctx, t)
	if err != nil {
		return runtimeResult{}, err
	}
	return runtimeResult{target: t.String(), unit: u, cached: cached}, nil
}

func fileNameFor(target string, device bool) string {
	name := strings.ReplaceAll(target, string(filepath.Separator), "_")
	if device {
		name += "-device"
	}
	return name + ".ll"
}

func writeUnit(cmd *cobra.Command, a *app, r runtimeResult, path string) error {
	if path == "" || path == "-" {
		if _, err := r.unit.WriteTo(cmd.OutOrStdout()); err != nil {
			return diag.WithCode(diag.IOOutput, fmt.Errorf("write runtime: %w", err))
		}
		return nil
	}
	if err := os.WriteFile(path, r.unit.Render(), 0o644); err != nil {
		return diag.WithCode(diag.IOOutput, fmt.Errorf("write runtime: %w", err))
	}
	if !a.quiet {
		how := "composed"
		if r.cached {
			how = "cached"
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%s, %d modules, %s)\n", path, r.target, len(r.unit.Modules()), how)
	}
	return nil
}

func isDir(path string) bool {
	if path == "" || path == "-" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
