package cmd

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/subcommands"

	"github.com/etnz/bank"
	"github.com/etnz/bank/config"
	"github.com/etnz/bank/docs"
)

// newTestCommander returns a commander with every bankctl command, and its
// top level flags.
func newTestCommander() (*subcommands.Commander, *flag.FlagSet) {
	f := flag.NewFlagSet("bankctl", flag.ContinueOnError)
	c := subcommands.NewCommander(f, "bankctl")
	Register(c)
	return c, f
}

// setupBank points the global flags at a fresh data file and clears the
// environment the configuration reads.
func setupBank(t *testing.T) string {
	t.Helper()
	for _, k := range []string{
		config.EnvDataFile, config.EnvDatabaseURL, config.EnvRedisAddr,
		config.EnvDailyTransferLimit, config.EnvWithdrawalLimit, config.EnvLockTimeout,
		config.EnvActor, config.EnvLogLevel, config.EnvBackupDir,
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	path := filepath.Join(t.TempDir(), "bank.jsonl")
	oldFile, oldLevel, oldRaw, oldOut := *dataFile, *logLevel, *raw, stdout
	*dataFile, *logLevel, *raw = path, "error", true
	t.Cleanup(func() { *dataFile, *logLevel, *raw, stdout = oldFile, oldLevel, oldRaw, oldOut })
	return path
}

// execute runs one bankctl command line and returns what it printed.
func execute(t *testing.T, args ...string) (string, subcommands.ExitStatus) {
	t.Helper()
	c, f := newTestCommander()
	if err := f.Parse(args); err != nil {
		t.Fatalf("could not parse %q: %v", args, err)
	}
	var out bytes.Buffer
	stdout = &out
	status := c.Execute(context.Background())
	return out.String(), status
}

func TestAccountFlow(t *testing.T) {
	path := setupBank(t)

	steps := []struct {
		args   []string
		status subcommands.ExitStatus
		want   string
	}{
		{
			args:   []string{"customer-add", "-name", "Asha", "-email", "asha@example.com"},
			status: subcommands.ExitSuccess,
			want:   "Registered customer CUST001 (Asha).",
		},
		{
			args:   []string{"customer-add", "-name", "Ravi"},
			status: subcommands.ExitSuccess,
			want:   "Registered customer CUST002 (Ravi).",
		},
		{
			args:   []string{"open", "-customer", "CUST001", "-type", "savings", "-amount", "5000"},
			status: subcommands.ExitSuccess,
			want:   "Opened savings account ACC1001 for Asha (CUST001) with ₹5,000.00.",
		},
		{
			args:   []string{"open", "-customer", "Asha", "-type", "savings", "-amount", "5000"},
			status: subcommands.ExitFailure,
		},
		{
			args:   []string{"open", "-customer", "CUST002", "-type", "current", "-amount", "20000"},
			status: subcommands.ExitSuccess,
			want:   "Opened current account ACC1002 for Ravi (CUST002) with ₹20,000.00.",
		},
		{
			args:   []string{"deposit", "-account", "ACC1001", "-amount", "2500"},
			status: subcommands.ExitSuccess,
		},
		{
			args:   []string{"transfer", "-from", "ACC1001", "-to", "ACC1002", "-amount", "1500"},
			status: subcommands.ExitSuccess,
			want:   "Transferred ₹1,500.00 from ACC1001 to ACC1002",
		},
		{
			args:   []string{"balance", "-account", "ACC1001"},
			status: subcommands.ExitSuccess,
			want:   "ACC1001 (Asha, savings, active): balance ₹6,000.00, available ₹5,000.00.",
		},
		{
			args:   []string{"withdraw", "-account", "ACC1001", "-amount", "100000"},
			status: subcommands.ExitFailure,
		},
		{
			args:   []string{"open", "-type", "savings", "-amount", "5000"},
			status: subcommands.ExitUsageError,
		},
		{
			args:   []string{"statement", "-account", "ACC1002"},
			status: subcommands.ExitSuccess,
			want:   "ACC1002",
		},
		{
			args:   []string{"transfer", "-from", "ACC1001", "-to", "ACC1002", "-amount", "10", "-kind", "internal"},
			status: subcommands.ExitFailure,
		},
		{
			args:   []string{"customers"},
			status: subcommands.ExitSuccess,
			want:   "| CUST001 | Asha | 1 | ₹6,000.00 |",
		},
	}
	for _, step := range steps {
		out, status := execute(t, step.args...)
		if status != step.status {
			t.Fatalf("bankctl %s exited with %v, want %v (output %q)", strings.Join(step.args, " "), status, step.status, out)
		}
		if !strings.Contains(out, step.want) {
			t.Errorf("bankctl %s printed %q, want it to contain %q", strings.Join(step.args, " "), out, step.want)
		}
	}

	snap, err := bank.FileStore{Path: path}.Load(context.Background())
	if err != nil {
		t.Fatalf("could not load %s: %v", path, err)
	}
	counts := map[bank.Table]int{}
	for _, rec := range snap.Records {
		counts[rec.Table()]++
	}
	if counts[bank.CustomerTable] != 2 || counts[bank.AccountTable] != 2 || counts[bank.TransferTable] != 1 {
		t.Errorf("data file holds %v, want 2 customers, 2 accounts and 1 transfer", counts)
	}
	if snap.Meta.Install == "" {
		t.Error("data file has no install identifier")
	}
}

func TestReadOnlyCommandsDoNotWrite(t *testing.T) {
	path := setupBank(t)

	if _, status := execute(t, "summary"); status != subcommands.ExitSuccess {
		t.Fatalf("bankctl summary exited with %v", status)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("bankctl summary created %s", path)
	}
}

// TestDocumentedExamples checks that every example of the documentation
// names a registered command and only flags that command defines.
func TestDocumentedExamples(t *testing.T) {
	c, _ := newTestCommander()
	root := Completion(c)
	// the global flags are registered on the process flag set.
	flag.CommandLine.VisitAll(func(fl *flag.Flag) { root.Flags[fl.Name] = predictFlag(fl) })

	topics, err := docs.GetAllTopics()
	if err != nil {
		t.Fatalf("GetAllTopics() failed: %v", err)
	}
	for _, topic := range append(topics, "readme") {
		examples, err := docs.Examples(topic)
		if err != nil {
			t.Fatalf("Examples(%q) failed: %v", topic, err)
		}
		for _, example := range examples {
			args := strings.Fields(strings.TrimPrefix(example, "$ "))
			if len(args) == 0 || args[0] != "bankctl" {
				continue
			}
			args = args[1:]
			for len(args) > 1 && strings.HasPrefix(args[0], "-") {
				if _, ok := root.Flags[strings.TrimLeft(args[0], "-")]; !ok {
					t.Errorf("%s: %q uses unknown global flag %s", topic, example, args[0])
				}
				args = args[2:]
			}
			if len(args) == 0 {
				t.Errorf("%s: %q has no command", topic, example)
				continue
			}
			sub, ok := root.Sub[args[0]]
			if !ok {
				t.Errorf("%s: %q uses unknown command %q", topic, example, args[0])
				continue
			}
			for _, arg := range args[1:] {
				if !strings.HasPrefix(arg, "-") {
					continue
				}
				if _, ok := sub.Flags[strings.TrimLeft(arg, "-")]; !ok {
					t.Errorf("%s: %q uses unknown flag %s", topic, example, arg)
				}
			}
		}
	}
}

func TestCompletion(t *testing.T) {
	c, _ := newTestCommander()
	root := Completion(c)

	tests := []struct {
		command string
		flag    string
	}{
		{"customer-add", "name"},
		{"open", "type"},
		{"transfer", "kind"},
		{"loan-apply", "category"},
		{"emi", "tenure"},
		{"backup", "dir"},
		{"close", "account"},
	}
	for _, tc := range tests {
		sub, ok := root.Sub[tc.command]
		if !ok {
			t.Errorf("Completion() has no %q command", tc.command)
			continue
		}
		if _, ok := sub.Flags[tc.flag]; !ok {
			t.Errorf("Completion() has no -%s flag for %q", tc.flag, tc.command)
		}
	}
	if got := root.Sub["topic"].Args.Predict(""); len(got) == 0 {
		t.Error("topic completion suggests nothing")
	}
}
