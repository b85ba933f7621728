package loadtest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/talenti/fitscore/internal/domain/model"
	"github.com/talenti/fitscore/pkg/logger"
)

const (
	directoryPermission = 0o750
	filePermission      = 0o640
	percentMultiplier   = 100
)

// ErrContract reports replies that broke the response contract or scored
// inconsistently on resubmission.
var ErrContract = errors.New("scoring responses failed verification")

// Run executes a load run: health check, generation, concurrent submission,
// verification, and determinism resubmission. The returned stats are valid
// even when err is non-nil.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get().Named("loadtest")
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}

	log.Info(ctx, "starting scoring load run",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("requests", cfg.Requests),
		logger.Int("workers", cfg.Workers),
		logger.Int("repeat", cfg.Repeat),
		logger.Duration("timeout", cfg.Timeout),
		logger.String("orgID", cfg.OrgID))

	c := newClient(cfg.BaseURL, cfg.Timeout)
	if err := c.healthy(ctx); err != nil {
		return finish(stats), fmt.Errorf("service health check failed: %w", err)
	}

	reqs := generateRequests(ctx, cfg, stats)
	if cfg.OutputFile != "" {
		if err := saveRequests(cfg.OutputFile, reqs); err != nil {
			log.Warn(ctx, "failed to save requests to file", logger.Error(err))
		}
	}

	replies, err := submitAll(ctx, c, cfg.Workers, reqs)
	if err != nil {
		return finish(stats), err
	}
	for i := range replies {
		stats.Submitted++
		r := &replies[i]
		switch r.outcome {
		case outcomeRejected:
			stats.Rejected++
			log.Warn(ctx, "request rejected", logger.String("interviewID", reqs[i].InterviewID), logger.Error(r.err))
			continue
		case outcomeFailed:
			stats.Failed++
			log.Warn(ctx, "request failed", logger.String("interviewID", reqs[i].InterviewID), logger.Error(r.err))
			continue
		}
		stats.Successful++
		verr := r.err
		if verr == nil {
			verr = verifyResponse(&reqs[i], &r.response)
		}
		if verr != nil {
			stats.Violations++
			log.Error(ctx, "response violates contract", logger.String("interviewID", reqs[i].InterviewID), logger.Error(verr))
		} else if cfg.Verbose {
			log.Info(ctx, "scored",
				logger.String("interviewID", r.response.InterviewID),
				logger.Int("overallScore", r.response.OverallScore),
				logger.Int("dimensions", len(r.response.Dimensions)))
		}
	}

	if err := repeatCheck(ctx, c, cfg.Repeat, reqs, replies, stats); err != nil {
		return finish(stats), err
	}

	finish(stats)
	logStats(ctx, log, stats)
	if !stats.OK() {
		return stats, ErrContract
	}
	return stats, nil
}

// submitAll posts every request with at most workers in flight. Replies keep
// the order of reqs.
func submitAll(ctx context.Context, c *client, workers int, reqs []model.ScoringRequest) ([]reply, error) {
	replies := make([]reply, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range reqs {
		g.Go(func() error {
			replies[i] = c.submit(gctx, &reqs[i])
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("submission interrupted: %w", err)
	}
	return replies, nil
}

// repeatCheck resubmits up to n successful requests and compares the replies.
func repeatCheck(ctx context.Context, c *client, n int, reqs []model.ScoringRequest, replies []reply, stats *Stats) error {
	for i := 0; i < len(reqs) && n > 0; i++ {
		if replies[i].outcome != outcomeSuccess || replies[i].err != nil {
			continue
		}
		n--
		again := c.submit(ctx, &reqs[i])
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("repeat check interrupted: %w", err)
		}
		if again.outcome != outcomeSuccess || again.err != nil {
			stats.Inconsistent++
			logger.Get().Error(ctx, "resubmitted request did not succeed",
				logger.String("interviewID", reqs[i].InterviewID), logger.Int("status", again.status), logger.Error(again.err))
			continue
		}
		if err := verifyRepeat(&replies[i].response, &again.response); err != nil {
			stats.Inconsistent++
			logger.Get().Error(ctx, "resubmitted request scored differently", logger.Error(err))
		}
	}
	return nil
}

func saveRequests(path string, reqs []model.ScoringRequest) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(reqs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal requests: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), filePermission)
}

func finish(stats *Stats) *Stats {
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	return stats
}

func logStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var successRate, perSecond float64
	if stats.Submitted > 0 {
		successRate = float64(stats.Successful) / float64(stats.Submitted) * percentMultiplier
	}
	if stats.Duration > 0 {
		perSecond = float64(stats.Submitted) / stats.Duration.Seconds()
	}
	log.Info(ctx, "final statistics",
		logger.Int("generated", stats.Generated),
		logger.Int("submitted", stats.Submitted),
		logger.Int("successful", stats.Successful),
		logger.Int("rejected", stats.Rejected),
		logger.Int("failed", stats.Failed),
		logger.Int("violations", stats.Violations),
		logger.Int("inconsistent", stats.Inconsistent),
		logger.Duration("duration", stats.Duration),
		logger.Float64("successRate", successRate),
		logger.Float64("requestsPerSecond", perSecond))
}
