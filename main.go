package main

import (
	"io"
	"log"
	"os"

	"github.com/urfave/cli/v2"
)

const version = "0.3.0"

var commands []*cli.Command

// vlog carries the progress output enabled by --verbose.
var vlog = log.New(io.Discard, "", 0)

func newApp() *cli.App {
	return &cli.App{
		Name:                   "ratc",
		Usage:                  "Translate Rat programs into symbol and stack machine instruction tables",
		Version:                version,
		EnableBashCompletion:   true,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"V"},
				Usage:   "Log progress, skipped characters and cache hits",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("verbose") {
				vlog.SetOutput(c.App.ErrWriter)
				vlog.SetPrefix("ratc: ")
			} else {
				vlog.SetOutput(io.Discard)
			}
			return nil
		},
		Commands: commands,
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
