package cmd

import (
	"context"
	"flag"

	"github.com/etnz/moneyhero/renderer"
	"github.com/google/subcommands"
)

type logCmd struct {
	limit int
	ids   bool
}

func (*logCmd) Name() string { return "log" }
func (*logCmd) Synopsis() string {
	return "display the battle log, most recent battles first"
}
func (*logCmd) Usage() string {
	return `hero log [-n <count>] [-ids]

  Lists the recorded transactions with their battle result and the
  experience they earned or cost.
`
}

func (p *logCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&p.limit, "n", 0, "Show only the N most recent battles.")
	f.BoolVar(&p.ids, "ids", false, "Show transaction ids.")
}

func (p *logCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withSession(func(s *session) subcommands.ExitStatus {
		l := renderer.NewBattleLog(s.engine.State(), s.cfg.Currency, p.limit)
		l.ShowIDs = p.ids
		printMarkdown(renderer.RenderBattleLog(l))
		return subcommands.ExitSuccess
	})
}
