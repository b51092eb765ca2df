package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"photoaudit/internal/di"
	"photoaudit/internal/providers"
	"photoaudit/internal/structures"
)

const usage = `Usage: photoaudit [flags] <command>

Commands:
  scan     report valid and invalid photo file names in a directory
  review   sample visits and classify them in the terminal
  serve    sample visits and classify them in the browser
  fetch    download form photos from CommCare and scan them

Flags:
`

func parseFlags(args []string) (*structures.CliFlags, error) {
	flags := &structures.CliFlags{}
	fs := flag.NewFlagSet("photoaudit", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usage)
		fs.PrintDefaults()
	}

	fs.StringVar(&flags.ConfigPath, "config", "config.yaml", "path to the YAML config file")
	fs.BoolVar(&flags.DebugMode, "debug", false, "enable debug logging")
	fs.StringVar(&flags.Directory, "dir", "", "photo directory to scan")
	fs.StringVar(&flags.Questions, "questions", "", "comma separated question ids to review")
	fs.StringVar(&flags.Buckets, "buckets", "", "comma separated bucket labels")
	fs.Float64Var(&flags.Percent, "percent", 0, "share of photos to review, in (0, 100]")
	fs.StringVar(&flags.Reviewer, "reviewer", "", "reviewer name written to the results")
	fs.StringVar(&flags.DecoyDir, "decoy-dir", "", "directory of known-bad photos to mix in")
	fs.IntVar(&flags.DecoyCount, "decoy-count", 0, "number of decoy photos")
	fs.StringVar(&flags.OutPath, "out", "", "results file; a .zst suffix compresses it")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return nil, fmt.Errorf("expected exactly one command, got %d", fs.NArg())
	}
	flags.Command = fs.Arg(0)
	return flags, nil
}

func main() {
	flags, err := parseFlags(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	app, err := di.InitApp(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", providers.AppName, err)
		os.Exit(1)
	}

	err = app.Run(context.Background())
	app.Close()
	if err != nil {
		os.Exit(1)
	}
}
