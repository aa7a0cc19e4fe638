package manifest

import "go.uber.org/zap"

// defaultStages are the ring depths generated for every variant kind.
var defaultStages = [...]int{2, 3, 4, 7}

// builtin describes one variant family in the default generation.
type builtin struct {
	kind      Kind
	minCap    int
	producers int
	consumers int
	txCount   uint32
}

var builtins = [...]builtin{
	{kind: KindAsync, minCap: 80, producers: 1, consumers: 1},
	{kind: KindCopy, minCap: 90, producers: 1, consumers: 2, txCount: 128},
	{kind: KindSplit, minCap: 100, producers: 1, consumers: 2, txCount: 128},
	{kind: KindStore, minCap: 90, producers: 1},
}

// Build feeds the built-in generation through a catalogue configured by
// opts and returns it ready to emit.
func Build(opts Options, log *zap.Logger) *Catalogue {
	c := New(opts, log)
	for _, b := range builtins {
		for _, stages := range defaultStages {
			c.Add(&Entry{
				Kind:      b.kind,
				MinCap:    b.minCap,
				Stages:    stages,
				Producers: b.producers,
				Consumers: b.consumers,
				TxCount:   b.txCount,
			})
		}
	}
	return c
}

// Default is Build with only a capability gate.
func Default(caps []int) *Catalogue {
	return Build(Options{Caps: caps}, nil)
}
