package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/moneyhero"
	"github.com/etnz/moneyhero/date"
	"github.com/etnz/moneyhero/renderer"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

// battleFlags are the flags shared by income and expense.
type battleFlags struct {
	date        string
	amount      string
	name        string
	description string
	category    string
}

func (b *battleFlags) set(f *flag.FlagSet) {
	f.StringVar(&b.date, "d", date.Today().String(), "Transaction date (YYYY-MM-DD)")
	f.StringVar(&b.amount, "amount", "", "Amount, positive with at most 2 decimals")
	f.StringVar(&b.name, "name", "", "Short name of the transaction")
	f.StringVar(&b.description, "m", "", "An optional description")
	f.StringVar(&b.category, "category", "", "Category, see hero topic battles (default \"other\")")
}

// record validates the flags as a transaction of type t and adds it.
func (b *battleFlags) record(f *flag.FlagSet, t moneyhero.TxType) subcommands.ExitStatus {
	if b.amount == "" || b.name == "" {
		return usageError(f, "Error: -amount and -name are required.")
	}
	amount, err := decimal.NewFromString(b.amount)
	if err != nil {
		return usageError(f, fmt.Sprintf("Error: invalid amount %q.", b.amount))
	}
	day, err := date.Parse(b.date)
	if err != nil {
		return usageError(f, fmt.Sprintf("Error parsing date: %v", err))
	}

	tx := moneyhero.Transaction{
		Type:        t,
		Amount:      amount,
		Date:        day,
		Name:        b.name,
		Description: b.description,
		Category:    b.category,
	}
	tx, err = tx.Validate(date.Today())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	return withSession(func(s *session) subcommands.ExitStatus {
		recorded, err := s.engine.AddTransaction(tx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Println(renderer.Transaction(recorded, s.cfg.Currency))
		s.announce()
		return subcommands.ExitSuccess
	})
}

// --- Income Command ---

type incomeCmd struct{ battleFlags }

func (*incomeCmd) Name() string     { return "income" }
func (*incomeCmd) Synopsis() string { return "record an income, a victory that grants experience" }
func (*incomeCmd) Usage() string {
	return `hero income -amount <amount> -name <name> [-category <category>] [-d <date>] [-m <description>]

  Records an income. It pays the debt back first, the surplus is added to
  the wallet and grants experience.
`
}

func (c *incomeCmd) SetFlags(f *flag.FlagSet) { c.set(f) }

func (c *incomeCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.record(f, moneyhero.Income)
}

// --- Expense Command ---

type expenseCmd struct{ battleFlags }

func (*expenseCmd) Name() string     { return "expense" }
func (*expenseCmd) Synopsis() string { return "record an expense, a defeat or a critical hit" }
func (*expenseCmd) Usage() string {
	return `hero expense -amount <amount> -name <name> [-category <category>] [-d <date>] [-m <description>]

  Records an expense. It is paid from the wallet, whatever the wallet cannot
  cover becomes debt and costs experience.
`
}

func (c *expenseCmd) SetFlags(f *flag.FlagSet) { c.set(f) }

func (c *expenseCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.record(f, moneyhero.Expense)
}

// --- Delete Command ---

type deleteCmd struct{}

func (*deleteCmd) Name() string     { return "delete" }
func (*deleteCmd) Synopsis() string { return "delete transactions and replay the history" }
func (*deleteCmd) Usage() string {
	return `hero delete <id>...

  Deletes transactions by id (see hero log -ids). The hero progression is
  recomputed from the remaining history; unlocked achievements are kept.
`
}

func (*deleteCmd) SetFlags(f *flag.FlagSet) {}

func (*deleteCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		return usageError(f, "Error: at least one transaction id is required.")
	}
	return withSession(func(s *session) subcommands.ExitStatus {
		status := subcommands.ExitSuccess
		for _, id := range f.Args() {
			tx, ok := s.engine.Transaction(id)
			if !ok {
				fmt.Fprintf(os.Stderr, "Error: no transaction %q\n", id)
				status = subcommands.ExitFailure
				continue
			}
			if err := s.engine.DeleteTransaction(id); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				status = subcommands.ExitFailure
				continue
			}
			fmt.Printf("Deleted %s %q of %s\n", tx.Type, tx.Name, moneyhero.M(tx.Amount, s.cfg.Currency))
		}
		s.announce()
		return status
	})
}
