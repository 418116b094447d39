package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/etnz/moneyhero"
	"github.com/etnz/moneyhero/renderer"
	"github.com/google/subcommands"
)

// --- Status Command ---

type statusCmd struct{}

func (*statusCmd) Name() string     { return "status" }
func (*statusCmd) Synopsis() string { return "show the hero sheet: level, experience, wallet and debt" }
func (*statusCmd) Usage() string {
	return `hero status

  Shows the hero level, the progress through the current level, the money,
  the debt and the number of achievements unlocked.
`
}

func (*statusCmd) SetFlags(f *flag.FlagSet) {}

func (*statusCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withSession(func(s *session) subcommands.ExitStatus {
		st := renderer.NewStatus(s.engine.State(), s.catalog, s.cfg.Currency)
		printMarkdown(renderer.RenderStatus(st))
		return subcommands.ExitSuccess
	})
}

// --- Name Command ---

type nameCmd struct{}

func (*nameCmd) Name() string     { return "name" }
func (*nameCmd) Synopsis() string { return "rename the hero" }
func (*nameCmd) Usage() string {
	return `hero name <name>

  Renames the hero. Angle brackets are removed and the name is trimmed.
`
}

func (*nameCmd) SetFlags(f *flag.FlagSet) {}

func (*nameCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	name := strings.Join(f.Args(), " ")
	if moneyhero.Sanitize(name) == "" {
		return usageError(f, "Error: a name is required.")
	}
	return withSession(func(s *session) subcommands.ExitStatus {
		s.engine.SetPlayerName(name)
		fmt.Printf("Welcome, %s!\n", s.engine.State().PlayerName)
		return subcommands.ExitSuccess
	})
}

// --- Achievements Command ---

type achievementsCmd struct {
	check bool
}

func (*achievementsCmd) Name() string     { return "achievements" }
func (*achievementsCmd) Synopsis() string { return "list the achievements and their status" }
func (*achievementsCmd) Usage() string {
	return `hero achievements [-check]

  Lists every achievement of the catalog with its reward and status.
`
}

func (c *achievementsCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.check, "check", false, "Check the achievements before listing them")
}

func (c *achievementsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withSession(func(s *session) subcommands.ExitStatus {
		if c.check {
			s.engine.CheckAchievements()
			s.announce()
		}
		printMarkdown(renderer.RenderAchievements(renderer.NewAchievementList(s.engine.Achievements())))
		return subcommands.ExitSuccess
	})
}

// --- Exp Command ---

type expCmd struct {
	lose bool
}

func (*expCmd) Name() string     { return "exp" }
func (*expCmd) Synopsis() string { return "grant or remove experience points" }
func (*expCmd) Usage() string {
	return `hero exp [-lose] <points>

  Grants experience points to the hero, or removes them with -lose. Levels
  are crossed as needed. This does not record any transaction.
`
}

func (c *expCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.lose, "lose", false, "Remove the points instead of granting them")
}

func (c *expCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return usageError(f, "Error: exactly one amount of points is required.")
	}
	points, err := strconv.ParseInt(f.Arg(0), 10, 64)
	if err != nil || points < 0 {
		return usageError(f, fmt.Sprintf("Error: invalid points %q.", f.Arg(0)))
	}
	return withSession(func(s *session) subcommands.ExitStatus {
		if c.lose {
			s.engine.LoseExp(points)
		} else {
			s.engine.AddExp(points)
		}
		s.announce()
		return subcommands.ExitSuccess
	})
}

// --- Reset Command ---

type resetCmd struct{}

func (*resetCmd) Name() string     { return "reset" }
func (*resetCmd) Synopsis() string { return "forget the hero and start over" }
func (*resetCmd) Usage() string {
	return `hero reset

  Removes the saved hero. The next command starts a new level 1 hero.
  Use hero backup first to keep a copy.
`
}

func (*resetCmd) SetFlags(f *flag.FlagSet) {}

func (*resetCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withSession(func(s *session) subcommands.ExitStatus {
		s.engine.Reset()
		fmt.Fprintln(os.Stderr, "The hero has been reset.")
		return subcommands.ExitSuccess
	})
}
