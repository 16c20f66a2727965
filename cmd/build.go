package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/vjjda/suttaworks/internal/config"
	"github.com/vjjda/suttaworks/internal/hierarchy"
	"github.com/vjjda/suttaworks/internal/logging"
	"github.com/vjjda/suttaworks/internal/oracle"
	"github.com/vjjda/suttaworks/internal/report"
	"github.com/vjjda/suttaworks/internal/sink"
	"github.com/vjjda/suttaworks/internal/sources"
	"go.uber.org/zap"
)

var buildConfig string
var buildOut string
var buildVerbose bool
var buildLogFile string
var buildTimeout time.Duration
var buildNoDemote bool
var buildConcurrency int

// errTimeout is returned when a build exceeds --timeout.
var errTimeout = errors.New("build exceeded timeout")

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the hierarchy table from tree files",
	Long: `Read the super-tree and every book tree listed in the config, reconcile them
with the suttaplex cards, and write the normalized hierarchy as JSON.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log, closeLog, err := logging.New(logging.Options{
			Verbose: buildVerbose,
			File:    buildLogFile,
			Console: cmd.ErrOrStderr(),
		})
		if err != nil {
			return err
		}
		defer closeLog()

		id := uuid.New().String()
		log = log.With(zap.String("run_id", id))

		ctx := cmd.Context()
		if buildTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, buildTimeout)
			defer cancel()
		}

		err = runBuild(ctx, cmd, log, id)
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w (%s): %w", errTimeout, buildTimeout, err)
		}
		return err
	},
}

func runBuild(ctx context.Context, cmd *cobra.Command, log *zap.Logger, id string) error {
	start := time.Now()

	cfg, err := config.Load(buildConfig)
	if err != nil {
		return err
	}

	plan, err := sources.NewPlan(cfg.Tree, cfg.BaseDir())
	if err != nil {
		return err
	}
	books := plan.BookFiles(log)

	out := cfg.OutputPath()
	if buildOut != "" {
		out = buildOut
	}
	dest := sink.New(out, cmd.OutOrStdout())

	display := cmd.ErrOrStderr()
	report.FormatHeader(display, report.Header{
		RunID:     id,
		Config:    buildConfig,
		SuperTree: plan.SuperTree,
		BookFiles: len(books),
		Output:    dest.Name(),
	})

	extractor := oracle.NewExtractor(cfg.Resolve(cfg.Suttaplex), log)
	extractor.SetConcurrency(buildConcurrency)
	valid, _, err := extractor.Extract(ctx)
	if err != nil {
		return err
	}

	opts := []hierarchy.Option{hierarchy.WithOverrides(cfg.Overrides)}
	if buildNoDemote {
		opts = append(opts, hierarchy.WithoutDemotion())
	}
	engine := hierarchy.New(log, opts...)

	type result struct {
		records []hierarchy.NodeRecord
		summary hierarchy.Summary
		err     error
	}
	done := make(chan result, 1)
	go func() {
		records, summary, err := engine.Build(plan.SuperTree, books, valid)
		done <- result{records, summary, err}
	}()

	var res result
	select {
	case res = <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	if res.err != nil {
		return res.err
	}

	report.FormatSummary(display, res.summary, time.Since(start))

	if err := dest.WriteHierarchy(ctx, res.records); err != nil {
		return fmt.Errorf("failed to write hierarchy to %s: %w", dest.Name(), err)
	}
	report.FormatWritten(display, dest.Name(), len(res.records))
	return nil
}

func init() {
	buildCmd.Flags().StringVarP(&buildConfig, "config", "c", config.PathFromEnv(), "Path to the builder config (env SUTTAWORKS_CONFIG)")
	buildCmd.Flags().StringVarP(&buildOut, "out", "o", "", "Output file, '-' for stdout (default: path/name from config)")
	buildCmd.Flags().BoolVarP(&buildVerbose, "verbose", "v", false, "Log debug messages to the console")
	buildCmd.Flags().StringVar(&buildLogFile, "log-file", "", "Also write JSON logs at debug level to this file")
	buildCmd.Flags().DurationVar(&buildTimeout, "timeout", 0, "Abort the build after this long (0 = no limit)")
	buildCmd.Flags().BoolVar(&buildNoDemote, "no-demote", false, "Prune childless branches instead of demoting them to leaves")
	buildCmd.Flags().IntVar(&buildConcurrency, "concurrency", oracle.DefaultConcurrency, "Number of suttaplex files read in parallel")

	rootCmd.AddCommand(buildCmd)
}
