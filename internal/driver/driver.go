// Package driver implements the per-file pipeline spec.md §6 calls
// dofile: discover source files, and for each one read, parse, lower,
// scope-analyze and emit; writing the transformed sibling is left to
// the caller (the transform command). It mirrors
// the teacher's cmd/dwscript/cmd file-walking helpers (processPath/
// processDirectory in cmd/fmt.go) generalized to glob patterns and
// natural-sorted results.
package driver

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cwbudde/cpst/internal/cpsemit"
	"github.com/cwbudde/cpst/internal/cpserr"
	"github.com/cwbudde/cpst/internal/cpslower"
	"github.com/cwbudde/cpst/internal/cpsscope"
	"github.com/cwbudde/cpst/internal/cpstrampoline"
	"github.com/cwbudde/cpst/internal/surfast"
	"github.com/cwbudde/cpst/internal/surfparse"
	"github.com/maruel/natural"
)

const defaultPrefix = "cps_"

// Options configures one run of the pipeline over a set of files.
type Options struct {
	Prefix     string
	Suffix     string
	Trampoline bool
	Verbose    bool
}

// Result is the outcome of transforming one file.
type Result struct {
	Source string
	Output string
	Module *surfast.Module
	Diags  []*cpserr.Diagnostic
}

// OK reports whether the file transformed cleanly.
func (r Result) OK() bool { return len(r.Diags) == 0 }

// Discover expands paths — files, directories, or glob patterns — into
// a natural-sorted, de-duplicated list of source files. A directory
// path is walked recursively for files matching any of globs.
func Discover(paths, globs []string) ([]string, error) {
	seen := map[string]bool{}
	var out []string

	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		switch {
		case err == nil && info.IsDir():
			if walkErr := walkMatching(p, globs, add); walkErr != nil {
				return nil, walkErr
			}
		case err == nil:
			add(p)
		default:
			matches, globErr := filepath.Glob(p)
			if globErr != nil || len(matches) == 0 {
				return nil, fmt.Errorf("no such file, directory, or glob match: %s", p)
			}
			for _, m := range matches {
				add(m)
			}
		}
	}

	sort.Sort(natural.StringSlice(out))
	return out, nil
}

func walkMatching(root string, globs []string, add func(string)) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		for _, g := range globs {
			if ok, _ := filepath.Match(filepath.Base(g), filepath.Base(path)); ok {
				add(path)
				return nil
			}
		}
		return nil
	})
}

// OutputPath computes the sibling output path for src, inserting
// suffix before the extension: foo.cpst -> foo.cps.cpst.
func OutputPath(src, suffix string) string {
	ext := filepath.Ext(src)
	base := strings.TrimSuffix(src, ext)
	return fmt.Sprintf("%s.%s%s", base, suffix, ext)
}

// Transform runs one source file through parse -> lower -> scope
// analyze -> emit. It never writes anything; callers decide what to
// do with Result.Output (cpst transform writes it to OutputPath).
func Transform(file string, opts Options) Result {
	data, err := os.ReadFile(file)
	if err != nil {
		return Result{Source: file, Diags: []*cpserr.Diagnostic{cpserr.NewIO(file, err.Error())}}
	}
	source := string(data)

	p := surfparse.New(file, source)
	mod := p.ParseModule()
	if len(p.Errors()) > 0 {
		return Result{Source: file, Module: mod, Diags: p.Errors()}
	}

	lowerer := newLowerer(file, source, opts)
	irMod := lowerer.LowerModule(mod)
	if irMod == nil {
		return Result{Source: file, Module: mod, Diags: lowerer.Errors()}
	}

	cpsscope.Analyze(irMod.Body)

	output := cpsemit.Emit(irMod)
	if opts.Trampoline {
		output = cpstrampoline.Prelude() + output + cpstrampoline.Epilogue()
	}

	return Result{Source: file, Module: mod, Output: output}
}

// Check runs only the parse and lower stages, stopping short of scope
// analysis and emission: it is the pipeline cpst check uses to report
// diagnostics without ever producing output to write.
func Check(file string, opts Options) Result {
	data, err := os.ReadFile(file)
	if err != nil {
		return Result{Source: file, Diags: []*cpserr.Diagnostic{cpserr.NewIO(file, err.Error())}}
	}
	source := string(data)

	p := surfparse.New(file, source)
	mod := p.ParseModule()
	if len(p.Errors()) > 0 {
		return Result{Source: file, Module: mod, Diags: p.Errors()}
	}

	lowerer := newLowerer(file, source, opts)
	if irMod := lowerer.LowerModule(mod); irMod == nil {
		return Result{Source: file, Module: mod, Diags: lowerer.Errors()}
	}

	return Result{Source: file, Module: mod}
}

func newLowerer(file, source string, opts Options) *cpslower.Lowerer {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = defaultPrefix
	}
	lowererOpts := []cpslower.Option{cpslower.WithPrefix(prefix)}
	if opts.Trampoline {
		return cpstrampoline.New(file, source, lowererOpts...)
	}
	return cpslower.New(file, source, lowererOpts...)
}
