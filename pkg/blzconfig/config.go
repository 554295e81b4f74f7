// Package blzconfig loads the optional `.blzrc` on-disk defaults file the
// CLI/benchmark harness reads at startup (SPEC_FULL.md §1.1's "Configuration"
// entry): codec params and the worker-pool thread count, so a user doesn't
// have to repeat `--cname=lz4 --nthreads=8` on every invocation.
package blzconfig

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ContinuumIO/blz/pkg/blzerr"
	"github.com/ContinuumIO/blz/pkg/chunkenc"
)

// RC is the parsed shape of `.blzrc`.
type RC struct {
	Cname    string `yaml:"cname"`
	Clevel   int    `yaml:"clevel"`
	Shuffle  bool   `yaml:"shuffle"`
	NThreads int    `yaml:"nthreads"`
}

// Params converts the loaded defaults to a chunkenc.Override. Clevel and
// Shuffle are always carried as explicit overrides, so a field the file
// omits overrides with its zero value (0 / false). RC tracks nothing
// extra to tell set from unset: an absent `.blzrc` short-circuits in Load
// before Params is ever called, and a present one is taken at face value —
// a `.blzrc` that writes `clevel: 0` means clevel 0, not "unset").
func (rc RC) Params() chunkenc.Override {
	return chunkenc.Override{
		Cname:   rc.Cname,
		Clevel:  chunkenc.IntPtr(rc.Clevel),
		Shuffle: chunkenc.BoolPtr(rc.Shuffle),
	}
}

// Load reads and parses path. A missing file is not an error: the zero
// RC (ok=false) tells the caller to keep using built-in defaults.
func Load(path string) (RC, bool, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return RC{}, false, nil
		}
		return RC{}, false, blzerr.WrapIO(err, "reading %s", path)
	}
	var rc RC
	if err := yaml.Unmarshal(b, &rc); err != nil {
		return RC{}, false, blzerr.WrapCorrupted(err, "parsing %s", path)
	}
	return rc, true, nil
}
