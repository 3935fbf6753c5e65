package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"bdc/internal/bdcapi"
	"bdc/internal/config"
	"bdc/internal/export"
	"bdc/internal/pipeline"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Download, filter, aggregate, and export availability data",
	RunE:  runPipeline,
}

func runPipeline(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	client, err := newClient(cfg)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	asOf := cfg.AsOfDate
	if asOf == "" {
		dates, err := client.AvailabilityDates(ctx)
		if err != nil {
			return err
		}
		if len(dates) == 0 {
			return fmt.Errorf("no availability as-of dates published")
		}
		asOf = dates[len(dates)-1]
		logger.Info("using latest as-of date", zap.String("as_of_date", asOf))
	}

	opts, err := cfg.PipelineOptions()
	if err != nil {
		return err
	}
	if cfg.GeoidFile != "" {
		allow, err := export.ReadGeoidList(cfg.GeoidFile)
		if err != nil {
			return err
		}
		opts.GeoidAllowList = allow
		logger.Info("loaded geoid allow-list",
			zap.String("file", cfg.GeoidFile),
			zap.Int("geoids", len(allow)))
	}

	runner := pipeline.Runner{Source: client, Opts: opts, Log: logger}
	res, err := runner.Run(ctx, asOf, cfg.States, cfg.Technologies)
	if err != nil {
		return err
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	path := filepath.Join(cfg.Output.Dir, export.Filename(cfg.Technologies, cfg.Output.Format, time.Now()))
	if cfg.Output.Format == "xlsx" {
		err = export.SaveXLSX(res.Merged, path)
	} else {
		err = export.SaveCSV(res.Merged, path)
	}
	if err != nil {
		return err
	}
	fmt.Printf("Wrote %d rows x %d columns to %s\n",
		res.Merged.NumRows(), len(res.Merged.Columns()), path)
	return nil
}

// newClient builds the API client, prompting for the hash_value credential
// when it is in neither the config nor the environment.
func newClient(cfg *config.Config) (*bdcapi.Client, error) {
	if cfg.API.Username == "" {
		return nil, fmt.Errorf("api username not set (config api.username or BDC_USERNAME)")
	}
	hash := cfg.API.HashValue
	if hash == "" {
		fmt.Fprint(os.Stderr, "hash_value for "+cfg.API.Username+": ")
		b, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return nil, fmt.Errorf("read hash_value: %w", err)
		}
		hash = strings.TrimSpace(string(b))
		if hash == "" {
			return nil, fmt.Errorf("hash_value is required")
		}
	}
	return bdcapi.New(cfg.API.BaseURL, cfg.API.Username, hash, logger), nil
}
