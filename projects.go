package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
	"github.com/vyPal/ratc/lib/project"
	"github.com/vyPal/ratc/util"
)

func init() {
	commands = append(commands, &cli.Command{
		Name:      "init",
		Usage:     "Initialize a new project",
		Category:  "project",
		ArgsUsage: "[dir] [input...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "name",
				Aliases: []string{"n"},
				Usage:   "The project name",
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "Output directory recorded in the project file",
				Value:   ".",
			},
			&cli.BoolFlag{
				Name:    "force",
				Aliases: []string{"f"},
				Usage:   "Overwrite an existing project file without asking",
			},
		},
		Action: initProject,
	})
}

func initProject(c *cli.Context) error {
	rootDir := c.Args().First()
	if rootDir == "" {
		rootDir = "."
	}
	prompt := util.NewPrompter(c.App.Reader, c.App.Writer)

	if _, err := os.Stat(rootDir); os.IsNotExist(err) {
		if err := os.MkdirAll(rootDir, 0755); err != nil {
			return cli.Exit(color.RedString("Error creating directory: %s", err), 1)
		}
		fmt.Fprintln(c.App.Writer, "Created directory:", rootDir)
	}

	name := c.String("name")
	if name == "" {
		def := filepath.Base(rootDir)
		if abs, err := filepath.Abs(rootDir); err == nil {
			def = filepath.Base(abs)
		}
		name = prompt.String("Project name", def)
	}

	conf := project.Default(name)
	conf.OutputDir = c.String("out")

	// Remaining args are inputs relative to the project directory.
	for _, input := range c.Args().Tail() {
		base := filepath.Base(input)
		conf.Jobs = append(conf.Jobs, project.Job{
			Input:  input,
			Output: "output_" + strings.TrimSuffix(base, filepath.Ext(base)),
		})
	}
	if err := conf.Validate(); err != nil {
		return cli.Exit(color.RedString("Error: %s", err), 1)
	}

	path := filepath.Join(rootDir, project.FileName)
	confirmed := true
	confirm := func(q string) bool {
		confirmed = prompt.YN(q, false)
		return confirmed
	}
	if err := conf.Save(path, c.Bool("force"), confirm); err != nil {
		return cli.Exit(color.RedString("Error saving project file: %s", err), 1)
	}
	if !confirmed {
		fmt.Fprintln(c.App.Writer, "Kept existing file:", path)
		return nil
	}
	fmt.Fprintln(c.App.Writer, "Created file:", path)

	fmt.Fprintln(c.App.Writer, "----------------------------------------")
	fmt.Fprintln(c.App.Writer, "Project initialized successfully!")
	fmt.Fprintln(c.App.Writer, "Run 'cd", rootDir, "&& ratc build' to translate the project.")
	fmt.Fprintln(c.App.Writer, "----------------------------------------")
	return nil
}
