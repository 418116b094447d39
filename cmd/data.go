package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/moneyhero"
	"github.com/etnz/moneyhero/store"
	"github.com/google/subcommands"
)

// --- Query Command ---

type queryCmd struct {
	indent bool
}

func (*queryCmd) Name() string     { return "query" }
func (*queryCmd) Synopsis() string { return "evaluate a JSONPath expression against the hero" }
func (*queryCmd) Usage() string {
	return `hero query [-indent] <jsonpath>

  Prints the JSON value selected in the saved hero state.

Usage Examples:
$ hero query '$.level'
$ hero query '$.transactionHistory[?(@.battleResult=="critical")].name'
`
}

func (c *queryCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.indent, "indent", false, "Indent the JSON output")
}

func (c *queryCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return usageError(f, "Error: exactly one JSONPath expression is expected.")
	}
	return withSession(func(s *session) subcommands.ExitStatus {
		v, err := moneyhero.Query(s.engine.State(), f.Arg(0))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		var out []byte
		if c.indent {
			out, err = json.MarshalIndent(v, "", "  ")
		} else {
			out, err = json.Marshal(v)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Println(string(out))
		return subcommands.ExitSuccess
	})
}

// --- Backup Command ---

type backupCmd struct{}

func (*backupCmd) Name() string     { return "backup" }
func (*backupCmd) Synopsis() string { return "write a compressed copy of the hero" }
func (*backupCmd) Usage() string {
	return `hero backup <file>

  Writes the hero state, compressed with zstd, to file.
`
}

func (*backupCmd) SetFlags(f *flag.FlagSet) {}

func (*backupCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return usageError(f, "Error: exactly one file is expected.")
	}
	return withSession(func(s *session) subcommands.ExitStatus {
		if err := store.BackupFile(f.Arg(0), s.engine.State()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Fprintf(os.Stderr, "Saved a backup to %s\n", f.Arg(0))
		return subcommands.ExitSuccess
	})
}

// --- Restore Command ---

type restoreCmd struct{}

func (*restoreCmd) Name() string     { return "restore" }
func (*restoreCmd) Synopsis() string { return "replace the hero with a backup" }
func (*restoreCmd) Usage() string {
	return `hero restore <file>

  Replaces the hero state with a backup written by hero backup.
`
}

func (*restoreCmd) SetFlags(f *flag.FlagSet) {}

func (*restoreCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return usageError(f, "Error: exactly one file is expected.")
	}
	st, err := store.RestoreFile(f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return withSession(func(s *session) subcommands.ExitStatus {
		if err := s.engine.Restore(st); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Fprintf(os.Stderr, "Restored %s, level %d\n", s.engine.State().PlayerName, s.engine.State().Level)
		return subcommands.ExitSuccess
	})
}
