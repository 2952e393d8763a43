package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/ideaboard/internal/domain/ranking"
)

// ErrInconsistent is returned when the leaderboard disagrees with the stored ideas.
var ErrInconsistent = errors.New("leaderboard inconsistent with stored ideas")

// verifyResults checks the leaderboard is ordered by votes and headed by an
// idea holding the maximum vote count.
func verifyResults(ctx context.Context, board Board, report *Report) error {
	ideas, err := board.ListIdeas(ctx, ranking.ByVotes)
	if err != nil {
		return err
	}
	entries, err := board.Leaderboard(ctx)
	if err != nil {
		return err
	}
	report.LeaderboardEntries = len(entries)

	if len(ideas) == 0 {
		if len(entries) != 0 {
			return fmt.Errorf("%w: %d entries for an empty board", ErrInconsistent, len(entries))
		}
		return nil
	}
	if len(entries) == 0 {
		return fmt.Errorf("%w: empty leaderboard for %d ideas", ErrInconsistent, len(ideas))
	}

	maxVotes := 0
	for _, idea := range ideas {
		maxVotes = max(maxVotes, idea.Votes)
	}
	report.TopVotes = maxVotes

	for i, e := range entries {
		if e.Rank != i+1 {
			return fmt.Errorf("%w: entry %d has rank %d", ErrInconsistent, i, e.Rank)
		}
		if i > 0 && entries[i-1].Idea.Votes < e.Idea.Votes {
			return fmt.Errorf("%w: rank %d has more votes than rank %d", ErrInconsistent, e.Rank, entries[i-1].Rank)
		}
	}
	if entries[0].Idea.Votes != maxVotes {
		return fmt.Errorf("%w: leader has %d votes, maximum is %d", ErrInconsistent, entries[0].Idea.Votes, maxVotes)
	}
	return nil
}
