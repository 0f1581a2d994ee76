package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/marlin/internal/api"
	"github.com/JaimeStill/marlin/internal/config"
	"github.com/JaimeStill/marlin/internal/evaluation"
	"github.com/JaimeStill/marlin/internal/infrastructure"
)

// systems is what a run needs from the service: a key lister and the
// identification pipeline.
type systems struct {
	lister     evaluation.Lister
	identifier evaluation.Identifier
	logger     *slog.Logger
}

type systemsLoader func() (*systems, error)

func loadSystems() (*systems, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	infra, err := infrastructure.New(cfg)
	if err != nil {
		return nil, err
	}

	domain := api.NewDomain(api.NewRuntime(cfg, infra))
	return &systems{
		lister:     infra.Storage,
		identifier: domain.Identification,
		logger:     infra.Logger,
	}, nil
}

func newRunCommand(load systemsLoader) *cobra.Command {
	opts := evaluation.Options{}
	var output string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Identify every image under a prefix and write a CSV report",
		RunE: func(cmd *cobra.Command, args []string) error {
			sys, err := load()
			if err != nil {
				return err
			}

			rows, err := evaluation.Run(cmd.Context(), sys.lister, sys.identifier, opts, sys.logger)
			if err != nil {
				return err
			}

			if err := writeReport(cmd.OutOrStdout(), output, rows); err != nil {
				return err
			}

			summary := evaluation.Summarize(rows)
			fmt.Fprintf(cmd.ErrOrStderr(), "evaluated %d images: %d matched, %d failed, accuracy %.2f%%\n",
				summary.Total, summary.Matched, summary.Failed, summary.Accuracy()*100)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Prefix, "prefix", "fish-image/", "Object key prefix holding species folders")
	cmd.Flags().IntVar(&opts.Concurrency, "concurrency", 4, "Images identified in parallel")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "Evaluate at most this many images (0 for all)")
	cmd.Flags().StringVarP(&output, "output", "o", "fish_identification_batch_results.csv", "CSV report path, or - for stdout")

	return cmd
}

func writeReport(stdout io.Writer, output string, rows []evaluation.Row) error {
	if output == "-" {
		return evaluation.WriteCSV(stdout, rows)
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := evaluation.WriteCSV(f, rows); err != nil {
		f.Close()
		return fmt.Errorf("write report: %w", err)
	}
	return f.Close()
}
