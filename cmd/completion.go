package cmd

import (
	"flag"

	"github.com/etnz/moneyhero"
	"github.com/etnz/moneyhero/docs"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// argPredictors complete the positional arguments of some commands.
var argPredictors = map[string]complete.Predictor{
	"backup":  predict.Files("*.zst"),
	"restore": predict.Files("*.zst"),
	"import":  predict.Files("*.jsonl"),
	"export":  predict.Files("*.jsonl"),
	"topic":   complete.PredictFunc(func(string) []string { return append(docs.Names(), "*") }),
}

// flagPredictors complete flag values shared by several commands.
var flagPredictors = map[string]complete.Predictor{
	"config":   predict.Files("*.toml"),
	"store":    predict.Set{"file", "sqlite", "memory"},
	"path":     predict.Files("*"),
	"category": predict.Set(append(append([]string{}, moneyhero.IncomeCategories...), moneyhero.ExpenseCategories...)),
}

// Completion describes the hero command line for shell completion.
func Completion() *complete.Command {
	root := &complete.Command{
		Sub:   map[string]*complete.Command{},
		Flags: flagsOf(flag.CommandLine),
	}
	for _, g := range groups() {
		for _, c := range g.commands {
			fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
			c.SetFlags(fs)
			sub := &complete.Command{Flags: flagsOf(fs), Args: argPredictors[c.Name()]}
			root.Sub[c.Name()] = sub
		}
	}
	return root
}

func flagsOf(fs *flag.FlagSet) map[string]complete.Predictor {
	flags := map[string]complete.Predictor{}
	fs.VisitAll(func(f *flag.Flag) {
		switch p, ok := flagPredictors[f.Name]; {
		case ok:
			flags[f.Name] = p
		case isBool(f):
			flags[f.Name] = predict.Nothing
		default:
			flags[f.Name] = predict.Something
		}
	})
	return flags
}

func isBool(f *flag.Flag) bool {
	b, ok := f.Value.(interface{ IsBoolFlag() bool })
	return ok && b.IsBoolFlag()
}
