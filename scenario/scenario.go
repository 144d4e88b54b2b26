// SPDX-License-Identifier: MIT

// Package scenario reads dependency-risk scenarios from YAML and replays them
// onto a riskgraph.Graph.
//
// A document lists components, AND-gates and edges:
//
//	components:
//	  - {id: supplier, risk: 0.25}
//	  - {id: vendor}            # engine default risk
//	gates:
//	  - {id: both}
//	edges:
//	  - {from: supplier, to: vendor, weight: 0.5}
//	  - {from: vendor, to: both}  # engine default weight
//	threshold: 0.3
//
// Components are added first, in order, then gates, then edges. Unknown
// fields are rejected.
package scenario

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/deprisk/riskgraph"
)

// DefaultThreshold flags nothing: no total risk exceeds 1.
const DefaultThreshold = 1.0

// ErrInvalidDocument is wrapped by every validation failure of Parse.
var ErrInvalidDocument = errors.New("scenario: invalid document")

// Component declares a vertex of kind riskgraph.Component.
// A nil Risk selects the engine default.
type Component struct {
	ID   string   `yaml:"id" json:"id"`
	Risk *float64 `yaml:"risk,omitempty" json:"risk,omitempty"`
}

// Gate declares a vertex of kind riskgraph.AndGate.
type Gate struct {
	ID string `yaml:"id" json:"id"`
}

// Edge declares From → To. A nil Weight selects the engine default.
type Edge struct {
	From   string   `yaml:"from" json:"from"`
	To     string   `yaml:"to" json:"to"`
	Weight *float64 `yaml:"weight,omitempty" json:"weight,omitempty"`
}

// Document is one parsed scenario.
type Document struct {
	Components []Component `yaml:"components" json:"components"`
	Gates      []Gate      `yaml:"gates,omitempty" json:"gates,omitempty"`
	Edges      []Edge      `yaml:"edges,omitempty" json:"edges,omitempty"`
	Threshold  *float64    `yaml:"threshold,omitempty" json:"threshold,omitempty"`
}

// Load opens path and parses it with Parse.
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: open %s: %w", path, err)
	}
	defer f.Close()

	doc, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return doc, nil
}

// Parse decodes and validates a single YAML document.
func Parse(r io.Reader) (*Document, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty input: %w", ErrInvalidDocument)
		}

		return nil, fmt.Errorf("scenario: decode: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	return &doc, nil
}

// Validate checks ids and references. Numeric ranges are left to the engine,
// which reports them with its own sentinels.
func (d *Document) Validate() error {
	seen := make(map[string]struct{}, len(d.Components)+len(d.Gates))
	declare := func(kind string, i int, id string) error {
		if id == "" {
			return fmt.Errorf("%s[%d]: empty id: %w", kind, i, ErrInvalidDocument)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%s[%d]: duplicate id %q: %w", kind, i, id, ErrInvalidDocument)
		}
		seen[id] = struct{}{}

		return nil
	}
	for i, c := range d.Components {
		if err := declare("components", i, c.ID); err != nil {
			return err
		}
	}
	for i, g := range d.Gates {
		if err := declare("gates", i, g.ID); err != nil {
			return err
		}
	}
	for i, e := range d.Edges {
		for _, end := range []string{e.From, e.To} {
			if _, ok := seen[end]; !ok {
				return fmt.Errorf("edges[%d]: undeclared id %q: %w", i, end, ErrInvalidDocument)
			}
		}
	}

	return nil
}

// Len is the number of vertices the document declares.
func (d *Document) Len() int { return len(d.Components) + len(d.Gates) }

// ThresholdOr returns the document's threshold, or def when it has none.
func (d *Document) ThresholdOr(def float64) float64 {
	if d.Threshold == nil {
		return def
	}

	return *d.Threshold
}

// Apply replays the document onto g: components, then gates, then edges.
// It stops at the first engine error; what was applied before stays applied.
func (d *Document) Apply(g *riskgraph.Graph[string]) error {
	for _, c := range d.Components {
		var opts []riskgraph.VertexOption
		if c.Risk != nil {
			opts = append(opts, riskgraph.WithRisk(*c.Risk))
		}
		if err := g.AddComponent(c.ID, opts...); err != nil {
			return fmt.Errorf("scenario: component %q: %w", c.ID, err)
		}
	}
	if len(d.Gates) > 0 {
		ids := make([]string, len(d.Gates))
		for i, gt := range d.Gates {
			ids[i] = gt.ID
		}
		if err := g.AddAndGates(ids); err != nil {
			return fmt.Errorf("scenario: gates: %w", err)
		}
	}
	for _, e := range d.Edges {
		var opts []riskgraph.EdgeOption
		if e.Weight != nil {
			opts = append(opts, riskgraph.WithWeight(*e.Weight))
		}
		if err := g.AddEdge(e.From, e.To, opts...); err != nil {
			return fmt.Errorf("scenario: edge %q->%q: %w", e.From, e.To, err)
		}
	}

	return nil
}

// Build allocates a graph large enough for the document (at least the
// default capacity) and applies the document to it. opts are applied after
// the capacity, so an explicit WithCapacity wins.
func (d *Document) Build(opts ...riskgraph.Option) (*riskgraph.Graph[string], error) {
	capacity := riskgraph.DefaultCapacity
	if n := d.Len(); n > capacity {
		capacity = n
	}
	g := riskgraph.New[string](append([]riskgraph.Option{riskgraph.WithCapacity(capacity)}, opts...)...)
	if err := d.Apply(g); err != nil {
		return nil, err
	}

	return g, nil
}
