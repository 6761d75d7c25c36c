package graph

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errx "github.com/subscription-bot/server/internal/core/error"
)

const doc = `
initial_state: main_menu
config:
  prices:
    digital_single: 150
states:
  main_menu:
    text: "Привет, {name}!"
    keyboard:
      - ["📖 О журнале", "✍️ Оформить подписку"]
    transitions:
      - {trigger: "✍️ Оформить подписку", dest: ask_name, action: clear_data}
      - {trigger: "📖 О журнале", dest: about}
  ask_name:
    text: "Введите ФИО"
    transitions:
      - {trigger: "*", dest: ask_phone, action: save_name}
  ask_phone:
    text: "Телефон"
  about:
    text: "О журнале"
    transitions:
      - {trigger: "Назад", dest: main_menu}
`

func TestParse(t *testing.T) {
	g, err := Parse([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, "main_menu", g.Initial)
	assert.Len(t, g.Nodes, 4)
	assert.Equal(t, "ask_name", g.Node("ask_name").Name)
	assert.Equal(t, 150.0, g.Config.Prices["digital_single"])
	assert.Equal(t, [][]string{{"📖 О журнале", "✍️ Оформить подписку"}}, g.Node("main_menu").Keyboard)
	assert.ElementsMatch(t, []string{"clear_data", "save_name"}, g.Actions())
	assert.Empty(t, Problems(g))
	assert.NoError(t, Validate(g))
}

func TestParseMalformed(t *testing.T) {
	cases := map[string]string{
		"not yaml":        "states: [",
		"no initial":      "states: {a: {text: x}}",
		"no states":       "initial_state: a",
		"unknown field":   "initial_state: a\nstates: {a: {txt: x}}",
		"missing trigger": "initial_state: a\nstates: {a: {transitions: [{dest: a}]}}",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(src))
			require.Error(t, err)
			assert.True(t, errx.IsKind(err, errx.KindConfig))
		})
	}
}

func TestDanglingDestinationsAreToleratedAtLoad(t *testing.T) {
	g, err := Parse([]byte("initial_state: start\nstates:\n  a:\n    transitions: [{trigger: go, dest: nowhere}]\n"))
	require.NoError(t, err)

	p := Problems(g)
	require.Len(t, p, 2)
	assert.Contains(t, p[0], `"start"`)
	assert.Contains(t, p[1], `"nowhere"`)
	assert.True(t, errx.IsKind(Validate(g), errx.KindConfig))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errx.IsKind(err, errx.KindConfig))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fsm.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
	g, err := Load(path)
	require.NoError(t, err)
	assert.True(t, g.IsTrigger("Назад"))
	assert.False(t, g.IsTrigger("*"))
	assert.False(t, g.IsTrigger("hello"))
}

func TestRender(t *testing.T) {
	fields := map[string]string{"name": "Иван", "price": "1 500 ₽", "tag": "<b>"}
	tests := []struct {
		tmpl string
		want string
	}{
		{"plain", "plain"},
		{"Привет, {name}!", "Привет, Иван!"},
		{"{name}: {price}", "Иван: 1 500 ₽"},
		{"{missing} and {name}", "{missing} and {name}"},
		{"unclosed {name", "unclosed {name"},
		{"stray } brace", "stray } brace"},
		{"{{literal}} {name}", "{literal} Иван"},
		{"{tag}", "&lt;b&gt;"},
		{"{}", "{}"},
	}
	for _, tt := range tests {
		t.Run(tt.tmpl, func(t *testing.T) {
			assert.Equal(t, tt.want, Render(tt.tmpl, fields))
		})
	}
}
