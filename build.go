package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"github.com/vyPal/ratc/lib/analyzer"
	"github.com/vyPal/ratc/lib/backend"
	"github.com/vyPal/ratc/lib/cache"
	"github.com/vyPal/ratc/lib/compiler"
	"github.com/vyPal/ratc/lib/project"
)

func init() {
	commands = append(commands, &cli.Command{
		Name:      "build",
		Usage:     "Translate source files into symbol and instruction tables",
		Category:  "translate",
		ArgsUsage: "[file...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "The path to the project file. ",
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "Directory the tables are written to",
			},
			&cli.IntFlag{
				Name:  "base",
				Usage: "Address assigned to the first declared symbol",
				Value: compiler.DefaultBaseAddress,
			},
			&cli.BoolFlag{
				Name:    "strict",
				Aliases: []string{"s"},
				Usage:   "Reject unknown characters and undeclared identifiers",
			},
			&cli.BoolFlag{
				Name:    "arithmetic",
				Aliases: []string{"a"},
				Usage:   "Emit instructions for operator expressions",
			},
			&cli.BoolFlag{
				Name:  "llvm",
				Usage: "Also write LLVM IR for each input as <name>.ll",
			},
			&cli.BoolFlag{
				Name:    "no-cache",
				Aliases: []string{"n"},
				Usage:   "Translate every input even if it did not change",
			},
			&cli.BoolFlag{
				Name:    "fail-fast",
				Aliases: []string{"f"},
				Usage:   "Stop at the first input that fails",
			},
		},
		Action: build,
	})
}

// settings is the merged result of the project file and the flags.
type settings struct {
	opts     compiler.Options
	outDir   string
	llvm     bool
	useCache bool
	failFast bool
}

type job struct {
	input string
	name  string
}

func (s settings) paths(name string) []string {
	paths := []string{
		filepath.Join(s.outDir, name+"_symbol_table.txt"),
		filepath.Join(s.outDir, name+"_instruction_table.txt"),
	}
	if s.llvm {
		paths = append(paths, filepath.Join(s.outDir, name+".ll"))
	}
	return paths
}

// result of one job. A job is either cached, failed or carries its rendered
// artifacts in the order of settings.paths.
type result struct {
	job       job
	sum       string
	cached    bool
	artifacts [][]byte
	warnings  []analyzer.Warning
	err       error
}

func loadConfig(c *cli.Context) (project.Config, bool, error) {
	path := c.String("config")
	if path == "" {
		path = project.FileName
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return project.Default("."), false, nil
		}
	}
	conf, err := project.LoadFile(path)
	if err != nil {
		return project.Config{}, false, err
	}
	return conf, true, nil
}

func settingsFrom(c *cli.Context, conf project.Config, found bool) settings {
	s := settings{
		opts:     conf.TranslateOptions(),
		outDir:   ".",
		llvm:     conf.LLVM,
		useCache: !c.Bool("no-cache"),
		failFast: c.Bool("fail-fast"),
	}
	if found {
		s.outDir = conf.Resolve(conf.OutputDir)
	}
	if c.IsSet("out") {
		s.outDir = c.String("out")
	}
	if c.IsSet("base") {
		s.opts.BaseAddress = c.Int("base")
	}
	if c.IsSet("strict") {
		s.opts.Strict = c.Bool("strict")
	}
	if c.IsSet("arithmetic") {
		s.opts.Arithmetic = c.Bool("arithmetic")
	}
	if c.IsSet("llvm") {
		s.llvm = c.Bool("llvm")
	}
	return s
}

func jobsFrom(c *cli.Context, conf project.Config, found bool) ([]job, error) {
	var jobs []job
	if c.Args().Len() > 0 {
		for _, input := range c.Args().Slice() {
			base := filepath.Base(input)
			jobs = append(jobs, job{input: input, name: strings.TrimSuffix(base, filepath.Ext(base))})
		}
	} else if found {
		for _, j := range conf.Jobs {
			jobs = append(jobs, job{input: conf.Resolve(j.Input), name: j.Output})
		}
	}
	if len(jobs) == 0 {
		return nil, fmt.Errorf("no input files given and no jobs in %s", project.FileName)
	}

	seen := make(map[string]string)
	for _, j := range jobs {
		if other, ok := seen[j.name]; ok {
			return nil, fmt.Errorf("%s and %s would both write %s tables", other, j.input, j.name)
		}
		seen[j.name] = j.input
	}
	return jobs, nil
}

func build(c *cli.Context) error {
	conf, found, err := loadConfig(c)
	if err != nil {
		return cli.Exit(color.RedString("Error loading project file: %s", err), 1)
	}
	s := settingsFrom(c, conf, found)
	if s.opts.BaseAddress < 0 {
		return cli.Exit(color.RedString("Error: base address must not be negative"), 1)
	}

	jobs, err := jobsFrom(c, conf, found)
	if err != nil {
		return cli.Exit(color.RedString("Error: %s", err), 1)
	}

	var sums *cache.Sums
	if s.useCache {
		sums, err = cache.Open(s.outDir)
		if err != nil {
			color.Yellow("Ignoring the translation cache: %s", err)
			sums = nil
		}
	}

	results := translateAll(jobs, s, sums)

	failed := 0
	for _, r := range results {
		if r.err == nil && !r.cached {
			r.err = writeArtifacts(s.paths(r.job.name), r.artifacts)
			if r.err != nil && sums != nil {
				sums.Forget(r.job.name)
			}
		}
		if r.err != nil {
			failed++
			fmt.Fprintln(c.App.ErrWriter, color.RedString("Error translating %s: %s", r.job.input, r.err))
			if s.failFast {
				break
			}
			continue
		}

		for _, w := range r.warnings {
			fmt.Fprintln(c.App.ErrWriter, color.YellowString("warning: %s", w))
		}
		paths := s.paths(r.job.name)
		if r.cached {
			vlog.Printf("%s is unchanged, keeping %s and %s", r.job.input, paths[0], paths[1])
			continue
		}
		if sums != nil {
			sums.Record(r.job.name, r.sum)
		}
		fmt.Fprintf(c.App.Writer, "Processed %s, outputs written to %s and %s\n", r.job.input, paths[0], paths[1])
	}

	if sums != nil {
		if err := sums.Save(); err != nil {
			color.Yellow("Could not save the translation cache: %s", err)
		}
	}

	if failed > 0 {
		return cli.Exit(color.RedString("%d of %d inputs failed", failed, len(jobs)), 1)
	}
	return nil
}

// translateAll runs every job in its own goroutine. Results keep job order.
func translateAll(jobs []job, s settings, sums *cache.Sums) []result {
	results := make([]result, len(jobs))

	var wg sync.WaitGroup
	for i, j := range jobs {
		wg.Add(1)
		go func(i int, j job) {
			defer wg.Done()
			results[i] = translate(j, s, sums)
		}(i, j)
	}
	wg.Wait()

	return results
}

func translate(j job, s settings, sums *cache.Sums) result {
	vlog.Printf("translating %s", j.input)

	src, err := os.ReadFile(j.input)
	if err != nil {
		return result{job: j, err: errors.Wrapf(err, "reading %s", j.input)}
	}

	r := result{job: j, sum: cache.Sum(string(src), s.opts)}
	if sums != nil && sums.Fresh(j.name, r.sum, s.paths(j.name)...) {
		r.cached = true
		return r
	}

	opts := s.opts
	opts.OnSkip = func(pos lexer.Position, text string) {
		vlog.Printf("%s: skipped %q", pos, text)
	}

	stmts, err := compiler.Parse(j.input, string(src), opts)
	if err != nil {
		r.err = err
		return r
	}
	r.warnings = analyzer.Analyze(stmts, analyzer.Options{Arithmetic: opts.Arithmetic})

	prog, err := compiler.Compile(stmts, opts)
	if err != nil {
		r.err = err
		return r
	}
	r.artifacts, r.err = render(prog, s.llvm)
	return r
}

// render produces every artifact in memory so a failing job writes nothing.
func render(prog *compiler.Program, withLLVM bool) ([][]byte, error) {
	var symbols, instructions bytes.Buffer
	if err := prog.WriteSymbolTable(&symbols); err != nil {
		return nil, err
	}
	if err := prog.WriteInstructionTable(&instructions); err != nil {
		return nil, err
	}
	artifacts := [][]byte{symbols.Bytes(), instructions.Bytes()}

	if withLLVM {
		mod, err := backend.Lower(prog)
		if err != nil {
			return nil, errors.Wrap(err, "lowering to LLVM IR")
		}
		artifacts = append(artifacts, []byte(mod.String()))
	}
	return artifacts, nil
}

// writeArtifacts writes data[i] to paths[i]. If any write fails the files
// already written by this call are removed again.
func writeArtifacts(paths []string, data [][]byte) error {
	if len(paths) == 0 {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(paths[0]), 0755); err != nil {
		return errors.Wrap(err, "creating output directory")
	}

	for i, path := range paths {
		if err := os.WriteFile(path, data[i], 0644); err != nil {
			for _, written := range paths[:i] {
				os.Remove(written)
			}
			return errors.Wrapf(err, "writing %s", path)
		}
	}
	return nil
}
