package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/k0kubun/pp/v3"
	"github.com/spf13/pflag"

	service "github.com/okian/ideaboard/internal/app"
	"github.com/okian/ideaboard/internal/domain/model"
	"github.com/okian/ideaboard/internal/domain/ranking"
	"github.com/okian/ideaboard/internal/seed"
)

type command struct {
	summary string
	usage   string
	run     func(ctx context.Context, a *App, e *env, args []string) error
}

var commands = map[string]command{
	"submit": {
		summary: "submit a new startup idea",
		usage:   "submit --name NAME --tagline TAGLINE --description TEXT",
		run:     runSubmit,
	},
	"list": {
		summary: "list ideas sorted by rating or votes",
		usage:   "list [--sort rating|votes]",
		run:     runList,
	},
	"vote": {
		summary: "upvote an idea (once per device)",
		usage:   "vote ID",
		run:     runVote,
	},
	"leaderboard": {
		summary: "show the top ideas by votes",
		usage:   "leaderboard",
		run:     runLeaderboard,
	},
	"show": {
		summary: "print an idea as share text",
		usage:   "show ID",
		run:     runShow,
	},
	"stats": {
		summary: "show board totals",
		usage:   "stats",
		run:     runStats,
	},
	"seed": {
		summary: "fill the board with generated ideas and votes",
		usage:   "seed [--ideas N] [--votes N] [--seed N]",
		run:     runSeed,
	},
	"dump": {
		summary: "pretty print the stored records",
		usage:   "dump",
		run:     runDump,
	},
}

var commandOrder = []string{"submit", "list", "vote", "leaderboard", "show", "stats", "seed", "dump"}

func newFlagSet(a *App, name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

func parse(fs *pflag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	return nil
}

// oneArg returns the single positional argument.
func oneArg(fs *pflag.FlagSet, what string) (string, error) {
	if fs.NArg() != 1 || strings.TrimSpace(fs.Arg(0)) == "" {
		return "", fmt.Errorf("%w: expected exactly one %s", errUsage, what)
	}
	return strings.TrimSpace(fs.Arg(0)), nil
}

func noArgs(fs *pflag.FlagSet) error {
	if fs.NArg() != 0 {
		return fmt.Errorf("%w: unexpected argument %q", errUsage, fs.Arg(0))
	}
	return nil
}

func runSubmit(ctx context.Context, a *App, e *env, args []string) error {
	var sub service.Submission
	fs := newFlagSet(a, "submit")
	fs.StringVarP(&sub.StartupName, "name", "n", "", "startup name")
	fs.StringVarP(&sub.Tagline, "tagline", "t", "", "one-line tagline")
	fs.StringVarP(&sub.Description, "description", "d", "", "description")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := noArgs(fs); err != nil {
		return err
	}

	idea, err := e.svc.Submit(ctx, sub)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Idea submitted: %s (id %s, rating %d/%d)\n", idea.StartupName, idea.ID, idea.Rating, model.MaxRating)
	return nil
}

func runList(ctx context.Context, a *App, e *env, args []string) error {
	sortBy := e.cfg.DefaultSort
	fs := newFlagSet(a, "list")
	fs.StringVarP(&sortBy, "sort", "s", sortBy, "sort key: rating or votes")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := noArgs(fs); err != nil {
		return err
	}

	key, err := ranking.ParseSortKey(sortBy)
	if err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	ideas, err := e.svc.ListIdeas(ctx, key)
	if err != nil {
		return err
	}
	if len(ideas) == 0 {
		fmt.Fprintln(a.stdout, "No ideas yet. Add one with: ideaboard submit")
		return nil
	}
	votes, err := e.svc.UserVotes(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTAGLINE\tRATING\tVOTES\t")
	for _, idea := range ideas {
		mark := ""
		if votes.Has(idea.ID) {
			mark = "voted"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n", idea.ID, idea.StartupName, idea.Tagline, idea.Rating, idea.Votes, mark)
	}
	return tw.Flush()
}

func runVote(ctx context.Context, a *App, e *env, args []string) error {
	fs := newFlagSet(a, "vote")
	if err := parse(fs, args); err != nil {
		return err
	}
	id, err := oneArg(fs, "idea id")
	if err != nil {
		return err
	}

	idea, err := e.svc.CastVote(ctx, id)
	if errors.Is(err, service.ErrAlreadyVoted) {
		name := id
		if idea.ID != "" {
			name = idea.StartupName
		}
		fmt.Fprintf(a.stdout, "You already voted for %s.\n", name)
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Voted for %s. It now has %d %s.\n", idea.StartupName, idea.Votes, plural(idea.Votes, "vote"))
	return nil
}

func runLeaderboard(ctx context.Context, a *App, e *env, args []string) error {
	fs := newFlagSet(a, "leaderboard")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := noArgs(fs); err != nil {
		return err
	}

	entries, err := e.svc.Leaderboard(ctx)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(a.stdout, "No ideas yet. Add one with: ideaboard submit")
		return nil
	}

	tw := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tNAME\tTAGLINE\tVOTES\t")
	for _, entry := range entries {
		rank := fmt.Sprintf("%d", entry.Rank)
		if entry.Badge != "" {
			rank = entry.Badge + " " + rank
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t\n", rank, entry.Idea.StartupName, entry.Idea.Tagline, entry.Idea.Votes)
	}
	return tw.Flush()
}

func runShow(ctx context.Context, a *App, e *env, args []string) error {
	fs := newFlagSet(a, "show")
	if err := parse(fs, args); err != nil {
		return err
	}
	id, err := oneArg(fs, "idea id")
	if err != nil {
		return err
	}

	idea, err := e.svc.Idea(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, idea.ShareText())
	return nil
}

func runStats(ctx context.Context, a *App, e *env, args []string) error {
	fs := newFlagSet(a, "stats")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := noArgs(fs); err != nil {
		return err
	}

	st, err := e.svc.Stats(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Ideas:\t%d\n", st.Ideas)
	fmt.Fprintf(tw, "Total votes:\t%d\n", st.TotalVotes)
	fmt.Fprintf(tw, "Your votes:\t%d\n", st.VotesCast)
	fmt.Fprintf(tw, "Top rating:\t%d\n", st.TopRating)
	fmt.Fprintf(tw, "Storage:\t%s\n", e.cfg.StorageBackend)
	return tw.Flush()
}

func runSeed(ctx context.Context, a *App, e *env, args []string) error {
	var cfg seed.Config
	fs := newFlagSet(a, "seed")
	fs.IntVar(&cfg.Ideas, "ideas", seed.DefaultIdeas, "ideas to submit")
	fs.IntVar(&cfg.Votes, "votes", seed.DefaultVotes, "votes to cast, one per distinct idea")
	fs.Uint64Var(&cfg.Seed, "seed", 0, "non-zero for deterministic text and vote targets")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := noArgs(fs); err != nil {
		return err
	}

	report, err := seed.Run(ctx, e.svc, cfg)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Seeded %d ideas and %d votes; leaderboard verified (%d entries, top votes %d).\n",
		report.IdeasSubmitted, report.VotesCast, report.LeaderboardEntries, report.TopVotes)
	return nil
}

func runDump(ctx context.Context, a *App, e *env, args []string) error {
	fs := newFlagSet(a, "dump")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := noArgs(fs); err != nil {
		return err
	}

	printer := pp.New()
	printer.SetOutput(a.stdout)
	printer.SetColoringEnabled(false)

	for _, key := range []string{e.keys.Ideas(), e.keys.UserVotes()} {
		raw, found, err := e.store.Get(ctx, key)
		if err != nil {
			return fmt.Errorf("read %q: %w", key, err)
		}
		fmt.Fprintf(a.stdout, "%q:\n", key)
		if !found {
			fmt.Fprintln(a.stdout, "  (not set)")
			continue
		}
		var decoded any
		if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
			// show what is actually stored
			if _, perr := printer.Println(raw); perr != nil {
				return perr
			}
			continue
		}
		if _, err := printer.Println(decoded); err != nil {
			return err
		}
	}
	return nil
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
