package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"kernc/internal/blobstore"
	s3store "kernc/internal/blobstore/s3"
	miniostore "kernc/internal/blobstore/minio"
	"kernc/internal/cache"
	"kernc/internal/config"
	"kernc/internal/diag"
	"kernc/internal/driver"
	"kernc/internal/observ"
	"kernc/internal/ui"
)

// app is the state shared by every command of one invocation.
type app struct {
	cfg       config.Config
	colorMode diag.ColorMode
	quiet     bool
	timings   bool

	logger   *observ.Logger
	timer    *observ.Timer
	reporter *stderrReporter
	cleanup  []func()
}

func (a *app) setup(cmd *cobra.Command) error {
	flags := cmd.Root().PersistentFlags()

	colorFlag, _ := flags.GetString("color")
	mode, err := diag.ParseColorMode(colorFlag)
	if err != nil {
		return err
	}
	a.colorMode = mode
	diag.SetColorMode(mode)
	switch mode {
	case diag.ColorOn:
		color.NoColor = false
	case diag.ColorOff:
		color.NoColor = true
	default:
		color.NoColor = os.Getenv("NO_COLOR") != "" || !isTerminal(os.Stdout)
	}

	a.quiet, _ = flags.GetBool("quiet")
	a.timings, _ = flags.GetBool("timings")
	if a.timings {
		a.timer = observ.NewTimer()
	}

	configPath, _ := flags.GetString("config")
	if configPath != "" {
		a.cfg, err = config.Load(configPath)
	} else {
		a.cfg, err = config.Discover(".")
	}
	if err != nil {
		return err
	}

	level := a.cfg.Log.Level
	if l, _ := flags.GetString("log-level"); l != "" {
		level = l
	}
	a.logger, err = observ.Open(cmd.ErrOrStderr(), level, a.cfg.Log.Format)
	if err != nil {
		return err
	}
	a.reporter = newStderrReporter(cmd.ErrOrStderr(), a.quiet)

	stopProf, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	a.cleanup = append(a.cleanup, stopProf)

	stopTrace, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	a.cleanup = append(a.cleanup, stopTrace)
	return nil
}

func (a *app) teardown(cmd *cobra.Command) {
	for i := len(a.cleanup) - 1; i >= 0; i-- {
		a.cleanup[i]()
	}
	a.cleanup = nil
	if a.timings && a.timer != nil {
		fmt.Fprint(cmd.ErrOrStderr(), a.timer.Summary())
		a.timings = false
	}
}

func (a *app) styles(w io.Writer) ui.Styles {
	return ui.NewStyles(w, a.colorMode)
}

// session builds a driver session for one --target value ("" for none).
func (a *app) session(override string, c *cache.Cache) *driver.Session {
	return driver.NewSession(driver.Options{
		Override:       override,
		ConfigOverride: a.cfg.Target.Override,
		EnvVar:         a.cfg.Target.Env,
		Cache:          c,
		Logger:         a.logger,
		Reporter:       a.reporter,
		Timer:          a.timer,
	})
}

// openCache opens the store named by [cache]. A store that cannot be
// opened disables caching with a warning.
func (a *app) openCache(ctx context.Context) *cache.Cache {
	if !a.cfg.Cache.Enabled {
		return nil
	}
	store, err := a.openStore(ctx)
	if err != nil {
		a.reporter.Report(diag.Warning(diag.IOCache, fmt.Errorf("runtime cache disabled: %w", err)))
		return nil
	}
	return cacheFor(a, store)
}

func cacheFor(a *app, store blobstore.Store) *cache.Cache {
	codec, err := cache.ParseCodec(a.cfg.Cache.Codec)
	if err != nil {
		a.reporter.Report(diag.Warning(diag.IOCache, err))
		codec = cache.CodecZstd
	}
	return cache.New(store, cache.WithCodec(codec), cache.WithLogger(a.logger))
}

func (a *app) openStore(ctx context.Context) (blobstore.Store, error) {
	c := a.cfg.Cache
	switch c.Remote {
	case "s3":
		var opts []func(*awsconfig.LoadOptions) error
		if c.Region != "" {
			opts = append(opts, awsconfig.WithRegion(c.Region))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("load AWS config: %w", err)
		}
		client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			if c.Endpoint != "" {
				o.BaseEndpoint = aws.String(c.Endpoint)
				o.UsePathStyle = true
			}
		})
		return s3store.NewStore(client, c.Bucket, c.Prefix), nil
	case "minio":
		client, err := miniostore.Dial(miniostore.Options{
			Endpoint:  c.Endpoint,
			AccessKey: os.Getenv("KERNC_MINIO_ACCESS_KEY"),
			SecretKey: os.Getenv("KERNC_MINIO_SECRET_KEY"),
			Region:    c.Region,
			Secure:    c.Secure,
		})
		if err != nil {
			return nil, err
		}
		return miniostore.NewStore(client, c.Bucket, c.Prefix), nil
	default:
		dir, err := a.cfg.CacheDir()
		if err != nil {
			return nil, err
		}
		return blobstore.NewLocalStore(dir)
	}
}

// stderrReporter prints each distinct warning once, as it arrives.
type stderrReporter struct {
	mu    sync.Mutex
	w     io.Writer
	quiet bool
	bag   *diag.Bag
}

func newStderrReporter(w io.Writer, quiet bool) *stderrReporter {
	return &stderrReporter{w: w, quiet: quiet, bag: diag.NewBag(64)}
}

func (r *stderrReporter) Report(d diag.Diagnostic) {
	if r.quiet && d.Severity < diag.SevError {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bag.Add(d) {
		diag.Print(r.w, d)
	}
}
