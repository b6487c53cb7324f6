package cmd

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

func init() {
	RegisterCommand(&Command{
		Name:  "metrics",
		Short: "Scroll the configured list and print prometheus metrics",
		Long: `Scroll the configured list like "listkit scroll" and print the list
view metrics in the prometheus text exposition format.

Usage:
  listkit metrics`,
		Usage: "listkit metrics",
		Run:   runMetrics,
	})
}

func runMetrics(env *Env, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %v\n\nUsage: listkit metrics", args)
	}
	cfg, err := env.Config()
	if err != nil {
		return err
	}
	logger := env.Logger(cfg.LogLevel)

	reg := prometheus.NewRegistry()
	v, stats, err := newSession(cfg, logger, reg)
	if err != nil {
		return err
	}
	scrollThrough(v, cfg, stats)
	v.Dispose()

	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(env.Stdout, mf); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}
	return nil
}
