// Command migrate converts bank data from older formats into the current
// snapshot format, and checks the result.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/google/subcommands"

	"github.com/etnz/bank"
)

func main() {
	// The migrate tool needs its own set of flags, independent of the main bankctl tool.
	flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ExitOnError)

	commander := subcommands.NewCommander(flag.CommandLine, "migrate")
	commander.Register(&legacyCmd{}, "")
	commander.Register(&checkCmd{}, "")
	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

// --- legacyCmd ---

type legacyCmd struct {
	in  string
	out string
}

func (*legacyCmd) Name() string { return "legacy" }
func (*legacyCmd) Synopsis() string {
	return "converts a legacy CSV bank database into a bank data file"
}
func (*legacyCmd) Usage() string {
	return `migrate legacy -in <bank_database.csv> -out <bank.jsonl>

Reads the Table,Data CSV database of the previous tool and writes the same
customers, accounts, transactions, transfers, cheques, loans, payments and
audit entries as a bank data file. Cards and users have no equivalent and are
skipped. The output file must not exist.
`
}
func (c *legacyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.in, "in", "", "The path to the legacy CSV database.")
	f.StringVar(&c.out, "out", "", "The path where the bank data file will be written.")
}

func (c *legacyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.in == "" || c.out == "" {
		fmt.Fprintln(os.Stderr, "Error: -in and -out flags are required.")
		return subcommands.ExitUsageError
	}
	if _, err := os.Stat(c.out); !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Error: %s already exists.\n", c.out)
		return subcommands.ExitUsageError
	}

	in, err := os.Open(c.in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening legacy database: %v\n", err)
		return subcommands.ExitFailure
	}
	defer in.Close()

	snap, report, err := convertLegacy(in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error converting %s: %v\n", c.in, err)
		return subcommands.ExitFailure
	}
	if err := (bank.FileStore{Path: c.out}).Save(ctx, snap); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", c.out, err)
		return subcommands.ExitFailure
	}

	fmt.Print(report)
	for _, problem := range checkSnapshot(snap) {
		fmt.Printf("warning: %s\n", problem)
	}
	fmt.Printf("\nSuccessfully created bank data file at %s\n", c.out)
	return subcommands.ExitSuccess
}

// String lists the converted and skipped rows of every table.
func (r *legacyReport) String() string {
	var tables []string
	for t := range r.Converted {
		tables = append(tables, t)
	}
	for t := range r.Skipped {
		if _, ok := r.Converted[t]; !ok {
			tables = append(tables, t)
		}
	}
	slices.Sort(tables)

	var b strings.Builder
	fmt.Fprintf(&b, "%-14s %9s %7s\n", "table", "converted", "skipped")
	for _, t := range tables {
		fmt.Fprintf(&b, "%-14s %9d %7d\n", t, r.Converted[t], r.Skipped[t])
	}
	return b.String()
}

// --- checkCmd ---

type checkCmd struct {
	file string
}

func (*checkCmd) Name() string { return "check" }
func (*checkCmd) Synopsis() string {
	return "checks that a bank data file is consistent"
}
func (*checkCmd) Usage() string {
	return `migrate check -file <bank.jsonl>

Loads a bank data file and reports dangling customer and account references,
negative balances and balances that disagree with the last transaction of
their account.
`
}
func (c *checkCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "file", "", "The path to the bank data file.")
}

func (c *checkCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.file == "" {
		fmt.Fprintln(os.Stderr, "Error: -file flag is required.")
		return subcommands.ExitUsageError
	}
	snap, err := bank.FileStore{Path: c.file}.Load(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", c.file, err)
		return subcommands.ExitFailure
	}
	problems := checkSnapshot(snap)
	for _, problem := range problems {
		fmt.Println(problem)
	}
	if len(problems) > 0 {
		return subcommands.ExitFailure
	}
	fmt.Printf("%s: %d records, no problem found\n", c.file, len(snap.Records))
	return subcommands.ExitSuccess
}
