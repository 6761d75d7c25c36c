package model

// Wildcard matches any inbound text when no exact trigger did.
const Wildcard = "*"

// Graph is the immutable dialogue topology loaded from the graph document.
type Graph struct {
	Initial string           `yaml:"initial_state"`
	Config  GraphConfig      `yaml:"config"`
	Nodes   map[string]*Node `yaml:"states"`
}

// GraphConfig is the document's free-standing constants block.
type GraphConfig struct {
	Prices map[string]float64 `yaml:"prices"`
	// Labels maps button labels to pricing keys ("📦 Печатная" -> "print").
	Labels map[string]string `yaml:"labels"`
	// Preserve lists extra session fields that survive clear_data.
	Preserve []string `yaml:"preserve"`
}

// Node is one named screen of the dialogue.
type Node struct {
	Name        string       `yaml:"-"`
	Text        string       `yaml:"text"`
	Image       string       `yaml:"image,omitempty"`
	Keyboard    [][]string   `yaml:"keyboard,omitempty"`
	Transitions []Transition `yaml:"transitions,omitempty"`
}

// Transition moves a session from one node to Dest when Trigger matches.
type Transition struct {
	Trigger string `yaml:"trigger"`
	Dest    string `yaml:"dest"`
	Action  string `yaml:"action,omitempty"`
}

// Node returns the named node, or nil.
func (g *Graph) Node(name string) *Node {
	if g == nil || name == "" {
		return nil
	}
	return g.Nodes[name]
}

// Match returns the first transition whose trigger equals text exactly.
func (n *Node) Match(text string) (Transition, bool) {
	for _, t := range n.Transitions {
		if t.Trigger == text && t.Trigger != Wildcard {
			return t, true
		}
	}
	return Transition{}, false
}

// MatchWildcard returns the node's first wildcard transition.
func (n *Node) MatchWildcard() (Transition, bool) {
	for _, t := range n.Transitions {
		if t.Trigger == Wildcard {
			return t, true
		}
	}
	return Transition{}, false
}

// IsTrigger reports whether text is an exact trigger anywhere in the graph.
func (g *Graph) IsTrigger(text string) bool {
	if text == Wildcard {
		return false
	}
	for _, n := range g.Nodes {
		if _, ok := n.Match(text); ok {
			return true
		}
	}
	return false
}

// Actions returns every action name referenced by a transition.
func (g *Graph) Actions() []string {
	seen := map[string]struct{}{}
	var out []string
	for _, n := range g.Nodes {
		for _, t := range n.Transitions {
			if t.Action == "" {
				continue
			}
			if _, ok := seen[t.Action]; ok {
				continue
			}
			seen[t.Action] = struct{}{}
			out = append(out, t.Action)
		}
	}
	return out
}
