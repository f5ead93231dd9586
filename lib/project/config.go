package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/vyPal/ratc/lib/compiler"
	"gopkg.in/yaml.v3"
)

// FileName is the project file looked up in the working directory.
const FileName = "ratc.yaml"

type Config struct {
	Name        string `yaml:"name"`
	BaseAddress int    `yaml:"base_address"`
	Strict      bool   `yaml:"strict"`
	Arithmetic  bool   `yaml:"arithmetic"`
	OutputDir   string `yaml:"output_dir"`
	LLVM        bool   `yaml:"llvm"`
	Jobs        []Job  `yaml:"jobs,omitempty"`

	// dir is where the file was loaded from; job inputs and the output
	// directory are relative to it.
	dir string
}

// Job pairs an input file with the base name of its output tables.
type Job struct {
	Input  string `yaml:"input"`
	Output string `yaml:"output"`
}

func Default(name string) Config {
	if name == "" || name == "." {
		name = "NewProject"
	}
	return Config{
		Name:        name,
		BaseAddress: compiler.DefaultBaseAddress,
		OutputDir:   ".",
		dir:         ".",
	}
}

// Load reads FileName from dir. Fields missing from the file keep their
// default values.
func Load(dir string) (Config, error) {
	return LoadFile(filepath.Join(dir, FileName))
}

func LoadFile(path string) (Config, error) {
	conf := Default(filepath.Base(filepath.Dir(path)))

	file, err := os.Open(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "opening project file")
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(&conf); err != nil {
		return Config{}, errors.Wrapf(err, "decoding %s", path)
	}
	conf.dir = filepath.Dir(path)

	if err := conf.Validate(); err != nil {
		return Config{}, errors.Wrapf(err, "invalid %s", path)
	}
	return conf, nil
}

// Save writes the config to path. An existing file is only replaced when
// overwrite is set or confirm agrees; confirm may be nil.
func (c Config) Save(path string, overwrite bool, confirm func(question string) bool) error {
	if _, err := os.Stat(path); err == nil {
		if !overwrite && (confirm == nil || !confirm(path+" already exists. Overwrite?")) {
			return nil
		}
	}

	yml, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "encoding project file")
	}
	if err := os.WriteFile(path, yml, 0644); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	return nil
}

func (c Config) Validate() error {
	if c.BaseAddress < 0 {
		return fmt.Errorf("base_address must not be negative, got %d", c.BaseAddress)
	}
	seen := make(map[string]bool)
	for i, job := range c.Jobs {
		if strings.TrimSpace(job.Input) == "" {
			return fmt.Errorf("job %d has no input", i+1)
		}
		if strings.TrimSpace(job.Output) == "" {
			return fmt.Errorf("job %d (%s) has no output name", i+1, job.Input)
		}
		if seen[job.Output] {
			return fmt.Errorf("output name %q is used by more than one job", job.Output)
		}
		seen[job.Output] = true
	}
	return nil
}

// Dir is the directory the config was loaded from.
func (c Config) Dir() string {
	if c.dir == "" {
		return "."
	}
	return c.dir
}

// Resolve makes p relative to the config directory unless it is absolute.
func (c Config) Resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Dir(), p)
}

func (c Config) TranslateOptions() compiler.Options {
	return compiler.Options{
		BaseAddress: c.BaseAddress,
		Strict:      c.Strict,
		Arithmetic:  c.Arithmetic,
	}
}
