package seed_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/ideaboard/internal/adapters/kv"
	"github.com/okian/ideaboard/internal/adapters/repository"
	service "github.com/okian/ideaboard/internal/app"
	"github.com/okian/ideaboard/internal/domain/ranking"
	"github.com/okian/ideaboard/internal/seed"
	"github.com/okian/ideaboard/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

func newBoard() *service.Service {
	return service.New(repository.New(kv.NewMemory()))
}

// skewedBoard reports the leaderboard upside down.
type skewedBoard struct {
	*service.Service
}

func (b skewedBoard) Leaderboard(ctx context.Context) ([]ranking.Entry, error) {
	ideas, err := b.ListIdeas(ctx, ranking.ByVotes)
	if err != nil {
		return nil, err
	}
	out := make([]ranking.Entry, 0, len(ideas))
	for i := len(ideas) - 1; i >= 0; i-- {
		out = append(out, ranking.Entry{Rank: len(out) + 1, Idea: ideas[i]})
	}
	return out, nil
}

func TestRun(t *testing.T) {
	Convey("Given an empty board", t, func() {
		ctx := context.Background()
		board := newBoard()

		Convey("When seeding ideas and votes", func() {
			report, err := seed.Run(ctx, board, seed.Config{Ideas: 9, Votes: 4, Seed: 7})

			Convey("Then the report should add up", func() {
				So(err, ShouldBeNil)
				So(report.IdeasSubmitted, ShouldEqual, 9)
				So(report.VotesCast, ShouldEqual, 4)
				So(report.VotesDuplicate, ShouldEqual, 0)
				So(report.LeaderboardEntries, ShouldEqual, 5)
				So(report.TopVotes, ShouldEqual, 1)
				So(report.Duration, ShouldBeGreaterThanOrEqualTo, 0)
			})

			Convey("And the board should hold the seeded state", func() {
				st, stErr := board.Stats(ctx)
				So(stErr, ShouldBeNil)
				So(st.Ideas, ShouldEqual, 9)
				So(st.TotalVotes, ShouldEqual, 4)
				So(st.VotesCast, ShouldEqual, 4)
			})
		})

		Convey("When asking for more votes than ideas", func() {
			report, err := seed.Run(ctx, board, seed.Config{Ideas: 3, Votes: 10})

			Convey("Then each idea should be voted for once", func() {
				So(err, ShouldBeNil)
				So(report.VotesCast, ShouldEqual, 3)
			})
		})

		Convey("When the config is left zero", func() {
			report, err := seed.Run(ctx, board, seed.Config{})

			Convey("Then defaults should apply and no votes should be cast", func() {
				So(err, ShouldBeNil)
				So(report.IdeasSubmitted, ShouldEqual, seed.DefaultIdeas)
				So(report.VotesCast, ShouldEqual, 0)
			})
		})
	})

	Convey("Given two boards seeded with the same seed", t, func() {
		ctx := context.Background()
		a, b := newBoard(), newBoard()
		_, errA := seed.Run(ctx, a, seed.Config{Ideas: 4, Seed: 99})
		_, errB := seed.Run(ctx, b, seed.Config{Ideas: 4, Seed: 99})
		So(errA, ShouldBeNil)
		So(errB, ShouldBeNil)

		Convey("Then the generated text should match", func() {
			ideasA, _ := a.ListIdeas(ctx, ranking.ByVotes)
			ideasB, _ := b.ListIdeas(ctx, ranking.ByVotes)
			So(len(ideasA), ShouldEqual, len(ideasB))
			for i := range ideasA {
				So(ideasA[i].StartupName, ShouldEqual, ideasB[i].StartupName)
				So(ideasA[i].Tagline, ShouldEqual, ideasB[i].Tagline)
				So(ideasA[i].Description, ShouldEqual, ideasB[i].Description)
			}
		})
	})

	Convey("Given a board whose leaderboard is upside down", t, func() {
		ctx := context.Background()
		board := skewedBoard{Service: newBoard()}

		Convey("When seeding with votes", func() {
			_, err := seed.Run(ctx, board, seed.Config{Ideas: 6, Votes: 1, Seed: 3})

			Convey("Then verification should fail", func() {
				So(errors.Is(err, seed.ErrInconsistent), ShouldBeTrue)
			})
		})
	})

	Convey("Given a cancelled context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := seed.Run(ctx, newBoard(), seed.Config{Ideas: 2})

		Convey("Then the run should stop", func() {
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}
