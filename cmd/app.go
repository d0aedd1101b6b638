// Package cmd implements the CLI application to run a bank.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"go.uber.org/zap"

	"github.com/etnz/bank"
	"github.com/etnz/bank/config"
	"github.com/etnz/bank/pgstore"
	"github.com/etnz/bank/rediscache"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&customerAddCmd{}, "customers")
	c.Register(&customersCmd{}, "customers")

	c.Register(&openCmd{}, "accounts")
	c.Register(&depositCmd{}, "accounts")
	c.Register(&withdrawCmd{}, "accounts")
	c.Register(&balanceCmd{}, "accounts")
	c.Register(&statementCmd{}, "accounts")
	c.Register(&statusCmd{name: "freeze", to: bank.Frozen}, "accounts")
	c.Register(&statusCmd{name: "activate", to: bank.Active}, "accounts")
	c.Register(&statusCmd{name: "close", to: bank.Closed}, "accounts")
	c.Register(&interestCmd{}, "accounts")

	c.Register(&transferCmd{}, "transfers")

	c.Register(&chequeIssueCmd{}, "cheques")
	c.Register(&chequeDepositCmd{}, "cheques")
	c.Register(&chequeCancelCmd{}, "cheques")

	c.Register(&loanApplyCmd{}, "loans")
	c.Register(&loanPayCmd{}, "loans")
	c.Register(&loanDefaultCmd{}, "loans")
	c.Register(&emiCmd{}, "loans")
	c.Register(&scheduleCmd{}, "loans")

	c.Register(&auditCmd{}, "reports")
	c.Register(&summaryCmd{}, "reports")
	c.Register(&backupCmd{}, "reports")

	c.Register(&topicCmd{}, "help")
	c.Register(&completionCmd{}, "help")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var dataFile = flag.String("data-file", "", "Path to the bank data file (JSONL format). Overrides BANK_DATA_FILE.")
var actor = flag.String("actor", "", "Name recorded in the audit trail. Overrides BANK_ACTOR.")
var logLevel = flag.String("log-level", "", "Log level (debug, info, warn, error). Overrides BANK_LOG_LEVEL.")
var raw = flag.Bool("raw", false, "Print markdown as is, without terminal styling.")

// stdout receives the command output.
var stdout io.Writer = os.Stdout

// loadConfig reads the configuration and applies the global flags over it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if *dataFile != "" {
		cfg.DataFile = *dataFile
	}
	if *actor != "" {
		cfg.Actor = *actor
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	return cfg, nil
}

// session is a bank loaded from its store for the duration of one command.
type session struct {
	cfg     *config.Config
	log     *zap.Logger
	store   bank.Store
	meta    bank.Meta
	repo    *bank.MemoryRepository
	bank    *bank.Bank
	closers []func()
}

// openSession loads the bank from the configured store. A missing data file
// starts an empty bank.
func openSession(ctx context.Context) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log, err := config.Logger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	s := &session{cfg: cfg, log: log, store: bank.FileStore{Path: cfg.DataFile}}
	s.closers = append(s.closers, func() { log.Sync() })

	if cfg.DatabaseURL != "" {
		pg, err := pgstore.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			s.close()
			return nil, err
		}
		s.store = pg
		s.closers = append(s.closers, pg.Close)
	}

	snap, err := s.store.Load(ctx)
	if errors.Is(err, fs.ErrNotExist) {
		log.Warn("data file does not exist, starting an empty bank", zap.String("file", cfg.DataFile))
		snap, err = bank.NewSnapshot(), nil
	}
	if err != nil {
		s.close()
		return nil, err
	}
	s.meta = snap.Meta
	s.repo = bank.NewMemoryRepository(snap.Records...)

	opts := []bank.Option{bank.WithOptions(cfg.Options), bank.WithLogger(log)}
	if cfg.RedisAddr != "" {
		cache, err := rediscache.New(ctx, cfg.RedisAddr)
		if err != nil {
			log.Warn("quote cache disabled", zap.Error(err))
		} else {
			opts = append(opts, bank.WithQuoteCache(cache))
			s.closers = append(s.closers, func() { cache.Close() })
		}
	}

	s.bank, err = bank.New(ctx, s.repo, opts...)
	if err != nil {
		s.close()
		return nil, err
	}
	return s, nil
}

// withActor returns ctx carrying the configured actor.
func (s *session) withActor(ctx context.Context) context.Context {
	return bank.WithActor(ctx, s.cfg.Actor)
}

// save writes the whole bank back to its store.
func (s *session) save(ctx context.Context) error {
	snap, err := bank.Dump(ctx, s.repo)
	if err != nil {
		return err
	}
	snap.Meta.Install = s.meta.Install
	return s.store.Save(ctx, snap)
}

func (s *session) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// run opens the bank, calls op and prints the markdown it returns. When
// write is set the bank is saved after a successful op.
func run(ctx context.Context, write bool, op func(ctx context.Context, b *bank.Bank) (string, error)) subcommands.ExitStatus {
	s, err := openSession(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening bank: %v\n", err)
		return subcommands.ExitFailure
	}
	defer s.close()

	out, err := op(s.withActor(ctx), s.bank)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if write {
		if err := s.save(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving bank: %v\n", err)
			return subcommands.ExitFailure
		}
	}
	printMarkdown(out)
	return subcommands.ExitSuccess
}

// printMarkdown renders md for the terminal, or prints it as is with -raw.
func printMarkdown(md string) {
	if *raw {
		fmt.Fprintln(stdout, md)
		return
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		fmt.Fprintln(stdout, md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Fprintln(stdout, md)
		return
	}
	fmt.Fprint(stdout, out)
}

// parseAmount parses a positive amount flag.
func parseAmount(name, value string) (bank.Money, error) {
	if value == "" {
		return bank.Money{}, fmt.Errorf("-%s is required", name)
	}
	m, err := bank.ParseMoney(value)
	if err != nil {
		return bank.Money{}, fmt.Errorf("-%s: %w", name, err)
	}
	return m, nil
}

// required reports the first empty flag value, as a usage error.
func required(f *flag.FlagSet, names ...string) bool {
	for _, name := range names {
		if fl := f.Lookup(name); fl == nil || fl.Value.String() == "" {
			fmt.Fprintf(os.Stderr, "Error: -%s is required\n", name)
			f.Usage()
			return false
		}
	}
	return true
}
