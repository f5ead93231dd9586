// Package cache remembers which inputs were already translated so a batch
// build can skip them when neither the source nor the options changed.
package cache

import (
	"crypto/md5"
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"github.com/vyPal/ratc/lib/compiler"
)

// SumFile is the name of the sum file inside an output directory.
const SumFile = ".ratc-sums"

type Sums struct {
	path    string
	mu      sync.RWMutex
	entries map[string]string
}

// Open loads the sum file in dir. A missing file gives an empty set.
func Open(dir string) (*Sums, error) {
	s := &Sums{
		path:    filepath.Join(dir, SumFile),
		entries: make(map[string]string),
	}

	file, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "opening sum file")
	}
	defer file.Close()

	if err := gob.NewDecoder(file).Decode(&s.entries); err != nil {
		return nil, errors.Wrapf(err, "decoding %s", s.path)
	}
	return s, nil
}

// Sum fingerprints a source together with the options that affect its output.
func Sum(src string, opts compiler.Options) string {
	h := md5.New()
	fmt.Fprintf(h, "base=%d strict=%t arithmetic=%t\n", opts.BaseAddress, opts.Strict, opts.Arithmetic)
	io.WriteString(h, src)
	return fmt.Sprintf("%x", h.Sum(nil))
}

// Fresh reports whether name was last translated from the same sum and all of
// its artifacts are still on disk.
func (s *Sums) Fresh(name, sum string, artifacts ...string) bool {
	s.mu.RLock()
	recorded, ok := s.entries[name]
	s.mu.RUnlock()
	if !ok || recorded != sum {
		return false
	}
	for _, a := range artifacts {
		if _, err := os.Stat(a); err != nil {
			return false
		}
	}
	return true
}

func (s *Sums) Record(name, sum string) {
	s.mu.Lock()
	s.entries[name] = sum
	s.mu.Unlock()
}

func (s *Sums) Forget(name string) {
	s.mu.Lock()
	delete(s.entries, name)
	s.mu.Unlock()
}

func (s *Sums) Save() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return errors.Wrap(err, "creating output directory")
	}
	file, err := os.Create(s.path)
	if err != nil {
		return errors.Wrap(err, "creating sum file")
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(s.entries); err != nil {
		return errors.Wrapf(err, "encoding %s", s.path)
	}
	return nil
}
