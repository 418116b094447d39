// Package cmd implements the hero command line game.
package cmd

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/moneyhero"
	"github.com/etnz/moneyhero/store"
	"github.com/google/subcommands"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	for _, g := range groups() {
		for _, cmd := range g.commands {
			c.Register(cmd, g.name)
		}
	}
}

type group struct {
	name     string
	commands []subcommands.Command
}

func groups() []group {
	return []group{
		{"player", []subcommands.Command{&statusCmd{}, &nameCmd{}, &achievementsCmd{}, &expCmd{}, &resetCmd{}}},
		{"battles", []subcommands.Command{&incomeCmd{}, &expenseCmd{}, &deleteCmd{}, &logCmd{}, &exportCmd{}, &importCmd{}}},
		{"data", []subcommands.Command{&queryCmd{}, &backupCmd{}, &restoreCmd{}}},
		{"", []subcommands.Command{&serveCmd{}, &topicCmd{}}},
	}
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	configFile   = flag.String("config", envOr(EnvConfig, "hero.toml"), "Path to the configuration file")
	storeBackend = flag.String("store", os.Getenv(EnvStore), "Storage backend (file, sqlite, memory), overrides the configuration file")
	storePath    = flag.String("path", os.Getenv(EnvPath), "Storage directory or database file, overrides the configuration file")
	storeKey     = flag.String("key", os.Getenv(EnvKey), "Key the player is saved under, overrides the configuration file")
	Verbose      = flag.Bool("v", envBool(EnvVerbose), "Log engine and storage messages to stderr")
)

func envOr(name, def string) string {
	if v, ok := os.LookupEnv(name); ok && v != "" {
		return v
	}
	return def
}

func envBool(name string) bool {
	v, _ := strconv.ParseBool(os.Getenv(name))
	return v
}

// LoadConfig reads the configuration file and applies the global flags.
func LoadConfig() (moneyhero.Config, error) {
	cfg, err := moneyhero.LoadConfig(*configFile)
	if err != nil {
		return cfg, err
	}
	if *storeBackend != "" {
		cfg.Storage.Backend = *storeBackend
	}
	if *storePath != "" {
		cfg.Storage.Path = *storePath
	}
	if *storeKey != "" {
		cfg.Storage.Key = *storeKey
	}
	return cfg, nil
}

func logger() *log.Logger {
	if *Verbose {
		return log.New(os.Stderr, "", log.LstdFlags)
	}
	return log.New(io.Discard, "", 0)
}

// session is an engine opened for the duration of one command.
type session struct {
	cfg     moneyhero.Config
	catalog *moneyhero.Catalog
	store   moneyhero.Store
	engine  *moneyhero.Engine

	mu     sync.Mutex
	events []moneyhero.Event
}

// openSession loads the configuration, opens the store and the engine.
// Engine events are collected for announce.
func openSession(opts ...moneyhero.Option) (*session, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	rules, err := cfg.RulesValue()
	if err != nil {
		return nil, err
	}
	catalog, err := cfg.Catalog()
	if err != nil {
		return nil, err
	}
	st, err := store.Open(cfg.Storage)
	if err != nil {
		return nil, err
	}
	base := []moneyhero.Option{
		moneyhero.WithRules(rules),
		moneyhero.WithCatalog(catalog),
		moneyhero.WithKey(cfg.Storage.Key),
		moneyhero.WithLogger(logger()),
	}
	e, err := moneyhero.NewEngine(st, append(base, opts...)...)
	if err != nil {
		closeStore(st)
		return nil, err
	}
	s := &session{cfg: cfg, catalog: catalog, store: st, engine: e}
	e.Subscribe(func(ev moneyhero.Event) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.events = append(s.events, ev)
	})
	return s, nil
}

// Close waits for the pending achievement checks and releases the store.
func (s *session) Close() error {
	s.engine.Wait()
	return closeStore(s.store)
}

func closeStore(st moneyhero.Store) error {
	if c, ok := st.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// announce prints what happened to the hero since the session was opened.
func (s *session) announce() {
	s.engine.Wait()
	s.mu.Lock()
	events := s.events
	s.events = nil
	s.mu.Unlock()

	for _, ev := range events {
		switch ev.Type {
		case moneyhero.EventLevelUp:
			fmt.Printf("⬆️  Level up! You reached level %d.\n", ev.Level)
		case moneyhero.EventLevelDown:
			fmt.Printf("⬇️  Level down... You are back to level %d.\n", ev.Level)
		case moneyhero.EventAchievementUnlocked:
			name := ev.AchievementID
			if a, ok := s.catalog.Get(ev.AchievementID); ok {
				name = a.Name
			}
			fmt.Printf("🏆 Achievement unlocked: %s\n", name)
		}
	}
}

// withSession opens a session, runs fn and closes the session.
func withSession(fn func(s *session) subcommands.ExitStatus) subcommands.ExitStatus {
	s, err := openSession()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	status := fn(s)
	if err := s.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Error closing storage: %v\n", err)
		if status == subcommands.ExitSuccess {
			status = subcommands.ExitFailure
		}
	}
	return status
}

// printMarkdown renders md for the terminal, or prints it raw when it cannot.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err == nil {
		var out string
		if out, err = r.Render(md); err == nil {
			fmt.Print(out)
			return
		}
	}
	fmt.Print(md)
}

// usageError prints msg and the usage of the command.
func usageError(f *flag.FlagSet, msg string) subcommands.ExitStatus {
	fmt.Fprintln(os.Stderr, msg)
	f.Usage()
	return subcommands.ExitUsageError
}
