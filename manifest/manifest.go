// Package manifest enumerates pipeline configurations, filters them by
// capability level and name pattern, and emits registration sources plus a
// build manifest describing the run.
package manifest

import (
	"bytes"
	"fmt"
	"slices"
	"sync"

	"github.com/llxisdsh/pb"
	"go.uber.org/zap"
)

// Kind names a pipeline variant family.
type Kind string

const (
	KindAsync Kind = "async"
	KindCopy  Kind = "copy"
	KindSplit Kind = "split"
	KindStore Kind = "store"
)

// kindOrder fixes the emission order; map walks are not deterministic.
var kindOrder = [...]Kind{KindAsync, KindCopy, KindSplit, KindStore}

// Entry is one generated pipeline configuration.
type Entry struct {
	// Kind selects the variant family.
	Kind Kind

	// MinCap is the lowest capability level the configuration runs on.
	MinCap int

	// Stages is the ring depth.
	Stages int

	// Producers and Consumers are the agent group sizes baked into the
	// registration stub.
	Producers int
	Consumers int

	// TxCount is the per-stage transaction expectation for engine-backed
	// kinds; zero for the others.
	TxCount uint32
}

// Name returns the procedural name, e.g. "copy_s4_c90". Catalogues dedup
// on it.
func (e *Entry) Name() string {
	return fmt.Sprintf("%s_s%d_c%d", e.Kind, e.Stages, e.MinCap)
}

// Source renders the registration stub for one configuration.
func (e *Entry) Source() []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "\tregister(Descriptor{\n")
	fmt.Fprintf(&b, "\t\tName:      %q,\n", e.Name())
	fmt.Fprintf(&b, "\t\tKind:      %q,\n", e.Kind)
	fmt.Fprintf(&b, "\t\tMinCap:    %d,\n", e.MinCap)
	fmt.Fprintf(&b, "\t\tStages:    %d,\n", e.Stages)
	fmt.Fprintf(&b, "\t\tProducers: %d,\n", e.Producers)
	fmt.Fprintf(&b, "\t\tConsumers: %d,\n", e.Consumers)
	fmt.Fprintf(&b, "\t\tTxCount:   %d,\n", e.TxCount)
	fmt.Fprintf(&b, "\t})\n")
	return b.Bytes()
}

// Catalogue collects accepted configurations, indexed kind by capability
// for emission. Adds may run concurrently; the name index dedups without
// a lock.
type Catalogue struct {
	opts    Options
	include []Filter
	exclude []Filter
	log     *zap.Logger

	names pb.MapOf[string, *Entry]

	mu    sync.Mutex
	index map[Kind]map[int][]*Entry
	count int
}

// New returns an empty catalogue that admits entries per opts.
// A nil logger disables logging.
func New(opts Options, log *zap.Logger) *Catalogue {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Catalogue{
		opts:  opts,
		log:   log,
		index: make(map[Kind]map[int][]*Entry),
	}
	for _, pattern := range opts.Names {
		c.include = append(c.include, CompileFilter(pattern))
	}
	for _, pattern := range opts.Ignore {
		c.exclude = append(c.exclude, CompileFilter(pattern))
	}
	return c
}

// Add admits e unless a filter culls it or an entry with the same
// procedural name is already present. It reports whether e was kept.
func (c *Catalogue) Add(e *Entry) bool {
	name := e.Name()
	if !c.admit(name, e) {
		c.log.Debug("culled configuration", zap.String("name", name))
		return false
	}

	_, loaded := c.names.ProcessEntry(
		name,
		func(l *pb.EntryOf[string, *Entry]) (*pb.EntryOf[string, *Entry], *Entry, bool) {
			if l != nil {
				return l, l.Value, true
			}
			return &pb.EntryOf[string, *Entry]{Value: e}, e, false
		},
	)
	if loaded {
		c.log.Debug("duplicate configuration", zap.String("name", name))
		return false
	}

	c.mu.Lock()
	byCap := c.index[e.Kind]
	if byCap == nil {
		byCap = make(map[int][]*Entry)
		c.index[e.Kind] = byCap
	}
	byCap[e.MinCap] = append(byCap[e.MinCap], e)
	c.count++
	c.mu.Unlock()
	return true
}

// admit applies the capability gate, the include list and the ignore list.
// The ignore list applies even when no include patterns are set.
func (c *Catalogue) admit(name string, e *Entry) bool {
	if len(c.opts.Caps) > 0 {
		ok := false
		for _, cc := range c.opts.Caps {
			if cc >= e.MinCap {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if len(c.include) > 0 {
		ok := false
		for _, f := range c.include {
			if f.Matches(name) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	for _, f := range c.exclude {
		if f.Matches(name) {
			return false
		}
	}
	return true
}

// Count returns the number of admitted configurations.
func (c *Catalogue) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// Names lists the admitted procedural names in emission order.
func (c *Catalogue) Names() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	names := make([]string, 0, c.count)
	for _, kind := range kindOrder {
		byCap := c.index[kind]
		ccs := make([]int, 0, len(byCap))
		for cc := range byCap {
			ccs = append(ccs, cc)
		}
		slices.Sort(ccs)
		for _, cc := range ccs {
			for _, e := range byCap[cc] {
				names = append(names, e.Name())
			}
		}
	}
	return names
}
