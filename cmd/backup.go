package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/subcommands"
	"go.uber.org/zap"

	"github.com/etnz/bank"
)

type backupCmd struct {
	dir string
}

func (*backupCmd) Name() string     { return "backup" }
func (*backupCmd) Synopsis() string { return "copy the bank into the backup directory" }
func (*backupCmd) Usage() string {
	return `bankctl backup [-dir <directory>]

  Writes a timestamped copy of the bank, bank_<YYYYMMDD_HHMMSS>.jsonl, into
  the backup directory (BANK_BACKUP_DIR by default).
`
}

func (c *backupCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.dir, "dir", "", "Backup directory. Overrides BANK_BACKUP_DIR.")
}

func (c *backupCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := openSession(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening bank: %v\n", err)
		return subcommands.ExitFailure
	}
	defer s.close()

	dir := c.dir
	if dir == "" {
		dir = s.cfg.BackupDir
	}
	now := time.Now()

	var path string
	if fs, ok := s.store.(bank.FileStore); ok {
		path, err = fs.Backup(dir, now)
	} else {
		// Stores other than files are dumped into a snapshot file.
		path = filepath.Join(dir, "bank_"+now.Format("20060102_150405")+".jsonl")
		var snap *bank.Snapshot
		if snap, err = s.store.Load(ctx); err == nil {
			err = bank.FileStore{Path: path}.Save(ctx, snap)
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error writing backup: %v\n", err)
		return subcommands.ExitFailure
	}
	s.log.Info("backup written", zap.String("path", path))
	printMarkdown(fmt.Sprintf("Backup written to `%s`.", path))
	return subcommands.ExitSuccess
}
