package manifest

import (
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// Options narrows and routes a generation run. Every field maps to a
// PIPEGEN_* environment variable; command-line flags usually override them.
type Options struct {
	// Caps lists the capability levels the build targets. A configuration
	// is admitted when any listed level reaches its minimum.
	Caps []int `envconfig:"CAPS" default:"90,100"`

	// Names keeps only configurations matching at least one pattern;
	// empty keeps everything. A '*' matches any run of characters, plain
	// segments must appear in order.
	Names []string `envconfig:"NAMES"`

	// Ignore drops configurations matching any pattern. Unlike Names it
	// applies even when no include patterns are set.
	Ignore []string `envconfig:"IGNORE"`

	// Out is the directory Emit writes into.
	Out string `envconfig:"OUT" default:"generated"`

	// Jobs bounds parallel file emission. Zero or less means GOMAXPROCS.
	Jobs int `envconfig:"JOBS"`

	// Package names the package clause of generated files.
	Package string `envconfig:"PACKAGE" default:"pipelines"`
}

// OptionsFromEnv reads PIPEGEN_* environment variables.
func OptionsFromEnv() (Options, error) {
	var o Options
	if err := envconfig.Process("pipegen", &o); err != nil {
		return Options{}, err
	}
	return o, nil
}

// pkg returns the package clause, defaulting so a zero Options works.
func (o Options) pkg() string {
	if o.Package == "" {
		return "pipelines"
	}
	return o.Package
}

// Filter is a compiled wildcard pattern: '*' splits it into segments that
// must appear in the candidate in order, with anything between them.
type Filter []string

// CompileFilter splits pattern on '*'.
func CompileFilter(pattern string) Filter {
	return strings.Split(pattern, "*")
}

// Matches reports whether every segment appears in name in order.
func (f Filter) Matches(name string) bool {
	for _, seg := range f {
		i := strings.Index(name, seg)
		if i < 0 {
			return false
		}
		name = name[i+len(seg):]
	}
	return true
}
