// Package pipeline runs the daily report batch end to end: partition
// selection, fetch, consolidation, aggregation, and publication.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/quantgrid/xetrapulse/config"
	"github.com/quantgrid/xetrapulse/internal/aggregate"
	"github.com/quantgrid/xetrapulse/internal/consolidate"
	"github.com/quantgrid/xetrapulse/internal/logger"
	"github.com/quantgrid/xetrapulse/internal/partition"
	"github.com/quantgrid/xetrapulse/internal/storage"
)

// maxFetchParallel caps partition-level fetch concurrency.
const maxFetchParallel = 7

// Run executes one full report build.
//
// Stages:
//  1. Expand the configured window into partition keys.
//  2. Fetch every partition's raw batches (bounded parallelism; batch order
//     is kept stable per partition, and final ordering never depends on
//     arrival order because aggregation sorts by time-of-day globally).
//  3. Consolidate the batches into the typed flat table.
//  4. Aggregate to one row per (instrument, day).
//  5. Encode as Parquet and publish under cfg.ReportKey, overwriting the
//     previous artifact.
//
// Fail-fast: the first error at any stage aborts the run and nothing is
// published.
func Run(ctx context.Context, cfg config.ReportConfig, loader storage.BatchLoader, publisher storage.ReportPublisher) error {
	log := logger.Run()
	start := time.Now()

	winStart, winEnd, err := cfg.Window()
	if err != nil {
		return err
	}

	keys, err := partition.Keys(winStart, winEnd)
	if err != nil {
		return fmt.Errorf("select partitions: %w", err)
	}
	log.Info().
		Str("start", cfg.StartDate).
		Str("end", cfg.EndDate).
		Int("partitions", len(keys)).
		Msg("run start")

	parallel := cfg.FetchParallel
	if parallel < 1 || parallel > maxFetchParallel {
		parallel = maxFetchParallel
	}

	// Fetch partitions concurrently; perPartition[i] keeps key order so the
	// consolidated table is reproducible across runs.
	perPartition := make([][][]byte, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i, key := range keys {
		g.Go(func() error {
			batches, err := loader.Fetch(gctx, key)
			if err != nil {
				return fmt.Errorf("fetch partition %s: %w", key, err)
			}
			perPartition[i] = batches
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var batches [][]byte
	for _, p := range perPartition {
		batches = append(batches, p...)
	}
	log.Info().Int("batches", len(batches)).Msg("fetch done")

	records, err := consolidate.Consolidate(batches)
	if err != nil {
		return fmt.Errorf("consolidate: %w", err)
	}
	log.Info().Int("rows", len(records)).Msg("consolidate done")

	stats, err := aggregate.DailyStats(records)
	if err != nil {
		return fmt.Errorf("aggregate: %w", err)
	}
	log.Info().Int("daily_rows", len(stats)).Msg("aggregate done")

	body, err := storage.EncodeReport(stats)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := publisher.Store(ctx, cfg.ReportKey, body); err != nil {
		return fmt.Errorf("publish report: %w", err)
	}

	log.Info().
		Str("key", cfg.ReportKey).
		Int("bytes", len(body)).
		Dur("elapsed", time.Since(start)).
		Msg("run done")
	return nil
}
