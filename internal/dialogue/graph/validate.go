package graph

import (
	"fmt"
	"sort"
	"strings"

	errx "github.com/subscription-bot/server/internal/core/error"
	"github.com/subscription-bot/server/internal/dialogue/model"
)

// Problems lists every unresolvable reference in g: the initial node and
// each transition destination must name an existing node.
func Problems(g *model.Graph) []string {
	var out []string
	if g.Node(g.Initial) == nil {
		out = append(out, fmt.Sprintf("initial_state %q is not defined", g.Initial))
	}
	names := make([]string, 0, len(g.Nodes))
	for name := range g.Nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, t := range g.Nodes[name].Transitions {
			if g.Node(t.Dest) == nil {
				out = append(out, fmt.Sprintf("state %q: trigger %q leads to undefined %q", name, t.Trigger, t.Dest))
			}
		}
	}
	return out
}

// Validate returns a config error describing every problem, or nil.
func Validate(g *model.Graph) error {
	p := Problems(g)
	if len(p) == 0 {
		return nil
	}
	return errx.Configf("%s", strings.Join(p, "; "))
}
