package cmd

import (
	"context"
	"flag"

	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"

	"github.com/etnz/bank/docs"
)

// flagPredictors suggests values for flags shared by several commands.
var flagPredictors = map[string]complete.Predictor{
	"type":      predict.Set{"savings", "current", "fixed-deposit"},
	"category":  predict.Set{"home", "personal", "car", "education", "business"},
	"kind":      predict.Set{"internal", "inter-customer"},
	"log-level": predict.Set{"debug", "info", "warn", "error"},
	"data-file": predict.Files("*.jsonl"),
	"dir":       predict.Dirs("*"),
}

// Completion describes the commands registered in c and their flags for
// shell completion.
func Completion(c *subcommands.Commander) *complete.Command {
	root := &complete.Command{
		Sub:   map[string]*complete.Command{},
		Flags: map[string]complete.Predictor{},
	}
	c.VisitAll(func(fl *flag.Flag) { root.Flags[fl.Name] = predictFlag(fl) })
	c.VisitCommands(func(_ *subcommands.CommandGroup, cmd subcommands.Command) {
		f := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
		cmd.SetFlags(f)
		sub := &complete.Command{Flags: predictFlags(f)}
		if cmd.Name() == "topic" {
			sub.Args = topicPredictor{}
		}
		root.Sub[cmd.Name()] = sub
	})
	return root
}

func predictFlags(f *flag.FlagSet) map[string]complete.Predictor {
	flags := map[string]complete.Predictor{}
	f.VisitAll(func(fl *flag.Flag) { flags[fl.Name] = predictFlag(fl) })
	return flags
}

func predictFlag(fl *flag.Flag) complete.Predictor {
	if p, ok := flagPredictors[fl.Name]; ok {
		return p
	}
	return predict.Something
}

// topicPredictor suggests documentation topics.
type topicPredictor struct{}

func (topicPredictor) Predict(string) []string {
	topics, err := docs.GetAllTopics()
	if err != nil {
		return nil
	}
	return topics
}

type completionCmd struct{}

func (*completionCmd) Name() string     { return "completion" }
func (*completionCmd) Synopsis() string { return "print how to enable shell completion" }
func (*completionCmd) Usage() string {
	return `bankctl completion

  Prints the command enabling completion of bankctl commands and flags in bash.
`
}

func (*completionCmd) SetFlags(*flag.FlagSet) {}

func (*completionCmd) Execute(context.Context, *flag.FlagSet, ...interface{}) subcommands.ExitStatus {
	printMarkdown("Add this line to your `~/.bashrc`:\n\n```bash\ncomplete -C bankctl bankctl\n```")
	return subcommands.ExitSuccess
}
