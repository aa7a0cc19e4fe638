package manifest

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ManifestFile is the name of the build manifest written next to the
// generated sources.
const ManifestFile = "manifest.yaml"

// Run is the build manifest for one emission.
type Run struct {
	ID          string    `yaml:"id"`
	GeneratedAt time.Time `yaml:"generated_at"`
	Count       int       `yaml:"count"`
	Kinds       []string  `yaml:"kinds"`
	Caps        []int     `yaml:"caps"`
	Files       []string  `yaml:"files"`
}

// registrySource is written once per output tree so the generated package
// compiles standalone.
const registrySource = `// Code generated by pipegen. DO NOT EDIT.

package %s

// Descriptor identifies one generated pipeline configuration.
type Descriptor struct {
	Name      string
	Kind      string
	MinCap    int
	Stages    int
	Producers int
	Consumers int
	TxCount   uint32
}

var registry []Descriptor

func register(d Descriptor) {
	registry = append(registry, d)
}

// Registered lists every configuration compiled into the package.
func Registered() []Descriptor {
	return registry
}
`

// emitUnit is one output file: every entry of a kind at one capability.
type emitUnit struct {
	kind    Kind
	cc      int
	entries []*Entry
}

// Emit writes one source file per kind and capability level, a registry
// stub, and the build manifest under dir. Configuration files are written
// in parallel, bounded by Options.Jobs.
func (c *Catalogue) Emit(ctx context.Context, dir string) error {
	units, caps, kinds := c.snapshot()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("manifest: %w", err)
	}

	jobs := c.opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	files := make([]string, len(units))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, u := range units {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			name := fmt.Sprintf("%s_c%d.go", u.kind, u.cc)
			if err := os.WriteFile(filepath.Join(dir, name), c.renderFile(u), 0o644); err != nil {
				return fmt.Errorf("manifest: %w", err)
			}
			files[i] = name
			c.log.Debug("emitted configuration file",
				zap.String("file", name),
				zap.Int("configs", len(u.entries)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	registry := fmt.Sprintf(registrySource, c.opts.pkg())
	if err := os.WriteFile(filepath.Join(dir, "registry.go"), []byte(registry), 0o644); err != nil {
		return fmt.Errorf("manifest: %w", err)
	}

	run := Run{
		ID:          uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Count:       c.Count(),
		Kinds:       kinds,
		Caps:        caps,
		Files:       files,
	}
	data, err := yaml.Marshal(run)
	if err != nil {
		return fmt.Errorf("manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestFile), data, 0o644); err != nil {
		return fmt.Errorf("manifest: %w", err)
	}

	c.log.Info("emitted catalogue",
		zap.String("dir", dir),
		zap.String("run", run.ID),
		zap.Int("files", len(files)+2),
		zap.Int("configs", run.Count))
	return nil
}

// snapshot freezes the index into emission order: kinds in kindOrder,
// capabilities ascending, entries as admitted.
func (c *Catalogue) snapshot() ([]emitUnit, []int, []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var units []emitUnit
	var kinds []string
	capSet := make(map[int]struct{})
	for _, kind := range kindOrder {
		byCap := c.index[kind]
		if len(byCap) == 0 {
			continue
		}
		kinds = append(kinds, string(kind))
		ccs := make([]int, 0, len(byCap))
		for cc := range byCap {
			ccs = append(ccs, cc)
			capSet[cc] = struct{}{}
		}
		slices.Sort(ccs)
		for _, cc := range ccs {
			units = append(units, emitUnit{kind: kind, cc: cc, entries: slices.Clone(byCap[cc])})
		}
	}

	caps := make([]int, 0, len(capSet))
	for cc := range capSet {
		caps = append(caps, cc)
	}
	slices.Sort(caps)
	return units, caps, kinds
}

func (c *Catalogue) renderFile(u emitUnit) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "// Code generated by pipegen. DO NOT EDIT.\n\npackage %s\n\nfunc init() {\n", c.opts.pkg())
	for i, e := range u.entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.Write(e.Source())
	}
	b.WriteString("}\n")
	return b.Bytes()
}
