package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/ideaboard/internal/adapters/kv"
	"github.com/okian/ideaboard/internal/adapters/repository"
	service "github.com/okian/ideaboard/internal/app"
	"github.com/okian/ideaboard/internal/domain/model"
	"github.com/okian/ideaboard/internal/domain/ranking"
	"github.com/okian/ideaboard/internal/domain/rating"
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

// sequenceIDs hands out the given ids in order.
type sequenceIDs struct {
	ids []string
	n   int
}

func (s *sequenceIDs) Next() string {
	id := s.ids[s.n%len(s.ids)]
	s.n++
	return id
}

func newService(opts ...service.Option) (*service.Service, *kv.Memory) {
	mem := kv.NewMemory()
	return service.New(repository.New(mem), opts...), mem
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc, _ := newService()

		Convey("Then it should have sensible defaults", func() {
			So(svc, ShouldNotBeNil)
			So(svc.VoteWriteMode(), ShouldEqual, service.VoteWriteSequential)
		})
	})

	Convey("Given a new service asking for atomic votes", t, func() {
		Convey("When the backend can batch", func() {
			svc, _ := newService(service.WithVoteWriteMode("ATOMIC"))

			Convey("Then atomic mode should be kept", func() {
				So(svc.VoteWriteMode(), ShouldEqual, service.VoteWriteAtomic)
			})
		})

		Convey("When the backend cannot batch", func() {
			fileStore, err := kv.NewFile(t.TempDir())
			So(err, ShouldBeNil)
			svc := service.New(repository.New(fileStore), service.WithVoteWriteMode(service.VoteWriteAtomic))

			Convey("Then it should fall back to sequential", func() {
				So(svc.VoteWriteMode(), ShouldEqual, service.VoteWriteSequential)
			})
		})
	})
}

func TestService_Submit(t *testing.T) {
	Convey("Given a service", t, func() {
		ctx := context.Background()
		svc, mem := newService(service.WithRater(rating.Fixed(42)))

		Convey("When submitting a valid idea", func() {
			idea, err := svc.Submit(ctx, service.Submission{
				StartupName: "Acme",
				Tagline:     "Widgets for all",
				Description: "We make widgets",
			})

			Convey("Then it should be stored with zero votes", func() {
				So(err, ShouldBeNil)
				So(idea.ID, ShouldNotBeEmpty)
				So(idea.StartupName, ShouldEqual, "Acme")
				So(idea.Tagline, ShouldEqual, "Widgets for all")
				So(idea.Description, ShouldEqual, "We make widgets")
				So(idea.Votes, ShouldEqual, 0)
				So(idea.Rating, ShouldEqual, 42)

				ideas, listErr := svc.ListIdeas(ctx, ranking.ByRating)
				So(listErr, ShouldBeNil)
				So(ideas, ShouldResemble, []model.Idea{idea})
			})
		})

		Convey("When fields carry surrounding whitespace", func() {
			idea, err := svc.Submit(ctx, service.Submission{
				StartupName: "  Acme ",
				Tagline:     "\tWidgets",
				Description: "We make widgets\n",
			})

			Convey("Then they should be stored trimmed", func() {
				So(err, ShouldBeNil)
				So(idea.StartupName, ShouldEqual, "Acme")
				So(idea.Tagline, ShouldEqual, "Widgets")
				So(idea.Description, ShouldEqual, "We make widgets")
			})
		})

		Convey("When a field is empty or only whitespace", func() {
			_, err := svc.Submit(ctx, service.Submission{
				StartupName: "Acme",
				Tagline:     "   ",
			})

			Convey("Then it should be rejected listing every missing field", func() {
				So(errors.Is(err, service.ErrValidation), ShouldBeTrue)
				var verr *service.ValidationError
				So(errors.As(err, &verr), ShouldBeTrue)
				So(verr.Fields, ShouldResemble, []string{"tagline", "description"})
			})

			Convey("And storage should not be touched", func() {
				So(mem.Keys(), ShouldEqual, 0)
			})
		})

		Convey("When two ideas are submitted", func() {
			first, err1 := svc.Submit(ctx, service.Submission{StartupName: "A", Tagline: "a", Description: "a"})
			second, err2 := svc.Submit(ctx, service.Submission{StartupName: "B", Tagline: "b", Description: "b"})

			Convey("Then ids should differ and the newest should be listed first", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(first.ID, ShouldNotEqual, second.ID)

				ideas, _ := svc.ListIdeas(ctx, ranking.ByVotes)
				So(ideas[0].ID, ShouldEqual, second.ID)
				So(ideas[1].ID, ShouldEqual, first.ID)
			})
		})
	})

	Convey("Given an id generator that repeats", t, func() {
		ctx := context.Background()

		Convey("When the first id collides", func() {
			gen := &sequenceIDs{ids: []string{"1", "1", "2"}}
			svc, _ := newService(service.WithIDGenerator(gen))
			_, err1 := svc.Submit(ctx, service.Submission{StartupName: "A", Tagline: "a", Description: "a"})
			second, err2 := svc.Submit(ctx, service.Submission{StartupName: "B", Tagline: "b", Description: "b"})

			Convey("Then a fresh id should be drawn", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(second.ID, ShouldEqual, "2")
			})
		})

		Convey("When every id collides", func() {
			gen := &sequenceIDs{ids: []string{"1"}}
			svc, _ := newService(service.WithIDGenerator(gen))
			_, err1 := svc.Submit(ctx, service.Submission{StartupName: "A", Tagline: "a", Description: "a"})
			_, err2 := svc.Submit(ctx, service.Submission{StartupName: "B", Tagline: "b", Description: "b"})

			Convey("Then the duplicate should be reported", func() {
				So(err1, ShouldBeNil)
				So(errors.Is(err2, repository.ErrDuplicateID), ShouldBeTrue)
			})
		})
	})
}

func TestService_CastVote(t *testing.T) {
	Convey("Given a service with one idea", t, func() {
		ctx := context.Background()
		svc, _ := newService()
		idea, err := svc.Submit(ctx, service.Submission{StartupName: "Acme", Tagline: "t", Description: "d"})
		So(err, ShouldBeNil)

		Convey("When voting for it", func() {
			voted, voteErr := svc.CastVote(ctx, idea.ID)

			Convey("Then the count should go up and the vote should be recorded", func() {
				So(voteErr, ShouldBeNil)
				So(voted.Votes, ShouldEqual, 1)
				has, hasErr := svc.HasVoted(ctx, idea.ID)
				So(hasErr, ShouldBeNil)
				So(has, ShouldBeTrue)
			})

			Convey("And voting again should change nothing", func() {
				again, againErr := svc.CastVote(ctx, idea.ID)
				So(errors.Is(againErr, service.ErrAlreadyVoted), ShouldBeTrue)
				So(again.Votes, ShouldEqual, 1)

				stored, _ := svc.Idea(ctx, idea.ID)
				So(stored.Votes, ShouldEqual, 1)
				votes, _ := svc.UserVotes(ctx)
				So(votes.IDs(), ShouldResemble, []string{idea.ID})
			})
		})

		Convey("When voting for an unknown id", func() {
			_, voteErr := svc.CastVote(ctx, "missing")

			Convey("Then it should fail and record nothing", func() {
				So(errors.Is(voteErr, service.ErrIdeaNotFound), ShouldBeTrue)
				has, _ := svc.HasVoted(ctx, "missing")
				So(has, ShouldBeFalse)
			})
		})

		Convey("When nothing was voted yet", func() {
			has, hasErr := svc.HasVoted(ctx, idea.ID)

			Convey("Then HasVoted should be false", func() {
				So(hasErr, ShouldBeNil)
				So(has, ShouldBeFalse)
			})
		})
	})

	Convey("Given a service in atomic mode", t, func() {
		ctx := context.Background()
		svc, mem := newService(service.WithVoteWriteMode(service.VoteWriteAtomic))
		idea, err := svc.Submit(ctx, service.Submission{StartupName: "Acme", Tagline: "t", Description: "d"})
		So(err, ShouldBeNil)

		Convey("When voting", func() {
			_, voteErr := svc.CastVote(ctx, idea.ID)

			Convey("Then both records should be written", func() {
				So(voteErr, ShouldBeNil)
				raw, found, _ := mem.Get(ctx, kv.KeyUserVotes)
				So(found, ShouldBeTrue)
				So(raw, ShouldEqual, `["`+idea.ID+`"]`)
			})
		})
	})
}

func TestService_Leaderboard(t *testing.T) {
	Convey("Given stored ideas with known votes", t, func() {
		ctx := context.Background()
		mem := kv.NewMemory()
		repo := repository.New(mem)
		So(repo.SaveIdeas(ctx, []model.Idea{
			{ID: "1", StartupName: "a", Tagline: "a", Description: "a", Rating: 10, Votes: 3},
			{ID: "2", StartupName: "b", Tagline: "b", Description: "b", Rating: 90, Votes: 7},
			{ID: "3", StartupName: "c", Tagline: "c", Description: "c", Rating: 50, Votes: 5},
		}), ShouldBeNil)

		Convey("When asking for a top-2 leaderboard", func() {
			svc := service.New(repo, service.WithLeaderboardSize(2))
			board, err := svc.Leaderboard(ctx)

			Convey("Then ideas 2 and 3 should be ranked", func() {
				So(err, ShouldBeNil)
				So(len(board), ShouldEqual, 2)
				So(board[0].Idea.ID, ShouldEqual, "2")
				So(board[1].Idea.ID, ShouldEqual, "3")
			})
		})

		Convey("When votes change between calls", func() {
			svc := service.New(repo)
			before, _ := svc.Leaderboard(ctx)
			_, voteErr := svc.CastVote(ctx, "1")
			_, voteErr2 := svc.CastVote(ctx, "3")
			after, _ := svc.Leaderboard(ctx)

			Convey("Then the leaderboard should be recomputed", func() {
				So(voteErr, ShouldBeNil)
				So(voteErr2, ShouldBeNil)
				So(before[1].Idea.ID, ShouldEqual, "3")
				So(after[0].Idea.ID, ShouldEqual, "2")
				So(after[1].Idea.Votes, ShouldEqual, 6)
				So(after[2].Idea.Votes, ShouldEqual, 4)
			})
		})

		Convey("When listing by rating", func() {
			svc := service.New(repo)
			ideas, err := svc.ListIdeas(ctx, ranking.ByRating)

			Convey("Then ideas should be ordered by rating", func() {
				So(err, ShouldBeNil)
				So(ideas[0].ID, ShouldEqual, "2")
				So(ideas[1].ID, ShouldEqual, "3")
				So(ideas[2].ID, ShouldEqual, "1")
			})
		})

		Convey("When reading stats", func() {
			svc := service.New(repo)
			_, _ = svc.CastVote(ctx, "2")
			st, err := svc.Stats(ctx)

			Convey("Then totals should add up", func() {
				So(err, ShouldBeNil)
				So(st, ShouldResemble, service.Stats{Ideas: 3, TotalVotes: 16, VotesCast: 1, TopRating: 90})
			})
		})
	})

	Convey("Given an empty board", t, func() {
		svc, _ := newService()
		board, err := svc.Leaderboard(context.Background())

		Convey("Then the leaderboard should be empty", func() {
			So(err, ShouldBeNil)
			So(board, ShouldBeEmpty)
		})
	})
}
