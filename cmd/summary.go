package cmd

import (
	"context"
	"flag"

	"github.com/google/subcommands"

	"github.com/etnz/bank"
	"github.com/etnz/bank/renderer"
)

// summaryCmd holds the flags for the 'summary' subcommand.
type summaryCmd struct{}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display a summary of the bank" }
func (*summaryCmd) Usage() string {
	return `bankctl summary

  Displays total deposits, loans outstanding, net liquidity, the volume of
  credits and debits, and counts of accounts, loans and cheques.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {}

func (c *summaryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, false, func(ctx context.Context, b *bank.Bank) (string, error) {
		s, err := b.Summary(ctx)
		if err != nil {
			return "", err
		}
		return renderer.SummaryMarkdown(s), nil
	})
}

type auditCmd struct {
	tail   int
	action string
}

func (*auditCmd) Name() string     { return "audit" }
func (*auditCmd) Synopsis() string { return "display the audit trail" }
func (*auditCmd) Usage() string {
	return `bankctl audit [-tail <n>] [-action <ACTION>]

  Displays the audit trail, oldest first.
`
}

func (c *auditCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.tail, "tail", 0, "Show only the last N entries.")
	f.StringVar(&c.action, "action", "", "Show only entries of this action, like CHEQUE_BOUNCED.")
}

func (c *auditCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, false, func(ctx context.Context, b *bank.Bank) (string, error) {
		entries, err := b.AuditLog(ctx)
		if err != nil {
			return "", err
		}
		if c.action != "" {
			action, err := bank.ParseAction(c.action)
			if err != nil {
				return "", err
			}
			var kept []bank.AuditEntry
			for _, e := range entries {
				if e.Action == action {
					kept = append(kept, e)
				}
			}
			entries = kept
		}
		if c.tail > 0 && len(entries) > c.tail {
			entries = entries[len(entries)-c.tail:]
		}
		return renderer.RenderAudit(entries), nil
	})
}
