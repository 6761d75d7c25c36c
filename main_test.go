package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subscription-bot/server/internal/dialogue/model"
	"github.com/subscription-bot/server/internal/records"
)

func TestParseAdminIDs(t *testing.T) {
	assert.Equal(t, []int64{1, 22, 333}, parseAdminIDs("1, 22,333"))
	assert.Equal(t, []int64{5}, parseAdminIDs("abc,5,,7x"))
	assert.Nil(t, parseAdminIDs(""))
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	// An explicit --env that cannot be read is an error, so point at an empty one.
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, nil, 0o644))
	cmd.SetArgs(append(args, "--env", envFile))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	require.NoError(t, os.WriteFile(good, []byte(`
initial_state: main
states:
  main:
    text: hi
    transitions:
      - {trigger: "Далее", dest: ask_name, action: clear_data}
  ask_name:
    text: name?
    transitions:
      - {trigger: "*", dest: main, action: save_name}
`), 0o644))

	out, err := execute(t, "validate", good)
	require.NoError(t, err)
	assert.Contains(t, out, "2 states, ok")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte(`
initial_state: main
states:
  main:
    text: hi
    transitions:
      - {trigger: "Далее", dest: nowhere, action: fly}
`), 0o644))

	out, err = execute(t, "validate", bad)
	require.Error(t, err)
	assert.Contains(t, out, `"nowhere"`)
	assert.Contains(t, out, "fly")
}

func TestLastCommand(t *testing.T) {
	file := filepath.Join(t.TempDir(), "subs.xlsx")
	t.Setenv("EXCEL_FILE", file)
	t.Setenv("EXCEL_SHEET", "Подписки")

	store := records.New(records.Config{File: file, Sheet: "Подписки"})
	require.NoError(t, store.Append(context.Background(), model.Record{
		Time:   time.Date(2026, 3, 1, 10, 30, 0, 0, time.Local),
		UserID: 42,
		Handle: "@ivan",
		Fields: map[string]string{"name": "Иван Петров", "phone": "+7 900 000-00-00"},
	}))

	out, err := execute(t, "last", "42")
	require.NoError(t, err)
	assert.Contains(t, out, "ФИО: Иван Петров")
	assert.Contains(t, out, "Username: @ivan")

	out, err = execute(t, "last", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "no submissions for 7")

	_, err = execute(t, "last", "abc")
	assert.Error(t, err)
}
