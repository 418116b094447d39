package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/etnz/moneyhero"
	"github.com/etnz/moneyhero/date"
	"github.com/google/subcommands"
)

// --- Export Command ---

type exportCmd struct{}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export the battle log as JSON lines" }
func (*exportCmd) Usage() string {
	return `hero export [<file>]

  Writes every transaction, by ascending date, one JSON object per line.
  Without a file, the transactions are written to the standard output.
`
}

func (*exportCmd) SetFlags(f *flag.FlagSet) {}

func (*exportCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() > 1 {
		return usageError(f, "Error: at most one file is expected.")
	}
	return withSession(func(s *session) subcommands.ExitStatus {
		var w io.Writer = os.Stdout
		if f.NArg() == 1 {
			file, err := os.Create(f.Arg(0))
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				return subcommands.ExitFailure
			}
			defer file.Close()
			w = file
		}
		if err := moneyhero.EncodeHistory(w, s.engine.State()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	})
}

// --- Import Command ---

type importCmd struct{}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "fight the battles of a JSON lines file" }
func (*importCmd) Usage() string {
	return `hero import <file>

  Records every transaction of a file written by hero export, in file order.
  Each transaction gets a new id. Nothing is recorded if any transaction is
  invalid.
`
}

func (*importCmd) SetFlags(f *flag.FlagSet) {}

func (*importCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return usageError(f, "Error: exactly one file is expected.")
	}
	file, err := os.Open(f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	txs, err := moneyhero.DecodeHistory(file)
	file.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	today := date.Today()
	var errs []error
	for i, tx := range txs {
		if txs[i], err = tx.Validate(today); err != nil {
			errs = append(errs, fmt.Errorf("transaction %d %q: %w", i+1, tx.Name, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	return withSession(func(s *session) subcommands.ExitStatus {
		for _, tx := range txs {
			if _, err := s.engine.AddTransaction(tx); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				return subcommands.ExitFailure
			}
		}
		fmt.Printf("Imported %d transactions.\n", len(txs))
		s.announce()
		return subcommands.ExitSuccess
	})
}
