package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	service "github.com/okian/ideaboard/internal/app"
	"github.com/okian/ideaboard/pkg/logger"
)

// Run submits generated ideas, votes for a random subset and verifies the
// leaderboard.
func Run(ctx context.Context, board Board, config Config) (Report, error) {
	config = config.withDefaults()
	report := Report{StartTime: time.Now()}
	log := logger.Named("seed")

	log.Info(ctx, "starting seed run",
		logger.Int("ideas", config.Ideas),
		logger.Int("votes", config.Votes),
		logger.Any("seed", config.Seed))

	gen := newGenerator(config.Seed)

	// Step 1: Submit ideas
	ids := make([]string, 0, config.Ideas)
	for i := 0; i < config.Ideas; i++ {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("context cancelled during submission: %w", err)
		}
		idea, err := board.Submit(ctx, gen.submission(i))
		if err != nil {
			return report, fmt.Errorf("idea submission failed: %w", err)
		}
		ids = append(ids, idea.ID)
		report.IdeasSubmitted++
	}

	// Step 2: Vote for distinct ideas
	for _, id := range gen.voteTargets(ids, config.Votes) {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("context cancelled during voting: %w", err)
		}
		_, err := board.CastVote(ctx, id)
		switch {
		case errors.Is(err, service.ErrAlreadyVoted):
			report.VotesDuplicate++
		case err != nil:
			return report, fmt.Errorf("vote for %s failed: %w", id, err)
		default:
			report.VotesCast++
		}
	}

	// Step 3: Verify results
	if err := verifyResults(ctx, board, &report); err != nil {
		return report, fmt.Errorf("result verification failed: %w", err)
	}

	report.EndTime = time.Now()
	report.Duration = report.EndTime.Sub(report.StartTime)

	log.Info(ctx, "seed run completed",
		logger.Int("ideasSubmitted", report.IdeasSubmitted),
		logger.Int("votesCast", report.VotesCast),
		logger.Int("votesDuplicate", report.VotesDuplicate),
		logger.Int("leaderboardEntries", report.LeaderboardEntries),
		logger.Int("topVotes", report.TopVotes),
		logger.Duration("duration", report.Duration))
	return report, nil
}
