package graph

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	errx "github.com/subscription-bot/server/internal/core/error"
	"github.com/subscription-bot/server/internal/dialogue/model"
	logx "github.com/subscription-bot/server/pkg/logger"
)

// Load reads and parses the graph document at path.
func Load(path string) (*model.Graph, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		logx.Error().Err(err).Str("path", path).Msg("failed to read graph document")
		return nil, errx.Config(fmt.Errorf("read %s: %w", path, err))
	}
	g, err := Parse(b)
	if err != nil {
		logx.Error().Err(err).Str("path", path).Msg("failed to parse graph document")
		return nil, err
	}
	logx.Info().Str("path", path).Int("nodes", len(g.Nodes)).Str("initial", g.Initial).Msg("graph loaded")
	return g, nil
}

// Parse decodes a graph document. Only structure is checked here: dangling
// destinations are left to Validate and to lazy resolution in the engine so
// that a partially written document still boots.
func Parse(b []byte) (*model.Graph, error) {
	var g model.Graph
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&g); err != nil {
		return nil, errx.Config(fmt.Errorf("decode graph: %w", err))
	}
	if g.Initial == "" {
		return nil, errx.Configf("initial_state is not set")
	}
	if len(g.Nodes) == 0 {
		return nil, errx.Configf("no states defined")
	}
	for name, n := range g.Nodes {
		if n == nil {
			n = &model.Node{}
			g.Nodes[name] = n
		}
		n.Name = name
		for i, t := range n.Transitions {
			if t.Trigger == "" {
				return nil, errx.Configf("state %q: transition %d has no trigger", name, i)
			}
		}
	}
	return &g, nil
}
