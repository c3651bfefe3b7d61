package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfig writes a YAML config for a fresh SQLite database and returns
// its path. extra is appended verbatim.
func writeConfig(t *testing.T, extra string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "journal.yaml")
	content := "dialect: sqlite\ndsn: " + filepath.Join(dir, "journal.db") + "\n" + extra
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// runCLI executes the root command with --config prepended and returns
// stdout.
func runCLI(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}

	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(append([]string{"--config", configPath}, args...))

	err := cmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, configPath string, args ...string) string {
	t.Helper()
	out, err := runCLI(t, configPath, args...)
	require.NoError(t, err, "journal %s: %s", strings.Join(args, " "), out)
	return out
}

func TestInit(t *testing.T) {
	cfg := writeConfig(t, "journalTable: events\nmetadataTable: events_meta\n")

	out := mustRun(t, cfg, "init")
	assert.Equal(t, "Initialized sqlite journal (tables events, events_meta)\n", out)

	// Idempotent.
	mustRun(t, cfg, "init")
}

func TestInit_BadConfig(t *testing.T) {
	cfg := writeConfig(t, "batchSize: 0\n")

	_, err := runCLI(t, cfg, "init")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestReplay_Golden(t *testing.T) {
	cfg := writeConfig(t, "")

	mustRun(t, cfg, "append", "order-1", "1", `{"item":"book","qty":2}`, "--tags", "orders,books")
	mustRun(t, cfg, "append", "order-1", "2", `"shipped"`, "--tags", "orders")
	mustRun(t, cfg, "append", "order-1", "3", `{"b":true,"a":[1,2]}`)
	mustRun(t, cfg, "append", "order-2", "1", `"other stream"`)

	out := mustRun(t, cfg, "replay", "order-1")

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "replay_text", []byte(out))
}

func TestReplay_JSON(t *testing.T) {
	cfg := writeConfig(t, "")
	mustRun(t, cfg, "append", "p", "1", `{"n":1}`)
	mustRun(t, cfg, "append", "p", "2", `{"n":2}`)

	out := mustRun(t, cfg, "--format", "json", "replay", "p", "--from", "2")

	var resp struct {
		Status string       `json:"status"`
		Data   ReplayResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data.Events, 1)
	assert.Equal(t, int64(2), resp.Data.Events[0].SequenceNr)
	assert.JSONEq(t, `{"n":2}`, string(resp.Data.Events[0].Payload))
	assert.NotEmpty(t, resp.Data.Events[0].WriterUUID)
	assert.Zero(t, resp.Data.Failed)
}

func TestReplay_Empty(t *testing.T) {
	cfg := writeConfig(t, "")

	out := mustRun(t, cfg, "replay", "nobody")
	assert.Equal(t, "No events found.\n", out)
}

func TestAppend_DuplicateFails(t *testing.T) {
	cfg := writeConfig(t, "")
	mustRun(t, cfg, "append", "p", "1", `"a"`)

	out, err := runCLI(t, cfg, "append", "p", "1", `"b"`)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [PERSIST_FAILED]")
}

func TestAppend_InvalidArguments(t *testing.T) {
	cfg := writeConfig(t, "")

	tests := []struct {
		name string
		args []string
	}{
		{"bad sequence", []string{"append", "p", "one", `"a"`}},
		{"float payload", []string{"append", "p", "1", `1.5`}},
		{"bad json", []string{"append", "p", "1", `{`}},
		{"missing payload", []string{"append", "p", "1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, cfg, tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
		})
	}
}

func TestAppend_NonPositiveSequenceIsSerializationFailure(t *testing.T) {
	cfg := writeConfig(t, "")

	out, err := runCLI(t, cfg, "append", "p", "0", `"a"`)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "SERIALIZATION_FAILED")
}

func TestDeleteAndHighest(t *testing.T) {
	cfg := writeConfig(t, "")
	for _, seq := range []string{"1", "2", "3", "4"} {
		mustRun(t, cfg, "append", "p", seq, `"e"`)
	}

	assert.Equal(t, "Deleted p up to 3\n", mustRun(t, cfg, "delete", "p", "3"))
	assert.Equal(t, "4\n", mustRun(t, cfg, "highest", "p"))
	assert.Equal(t, "0\n", mustRun(t, cfg, "highest", "p", "--from", "4"))

	out := mustRun(t, cfg, "replay", "p")
	assert.Equal(t, "p 4 json [] \"e\"\n", out)

	// Deleting everything keeps the high-water mark.
	mustRun(t, cfg, "delete", "p", "4")
	assert.Equal(t, "4\n", mustRun(t, cfg, "highest", "p"))
	assert.Equal(t, "No events found.\n", mustRun(t, cfg, "replay", "p"))
}

func TestHighest_JSON(t *testing.T) {
	cfg := writeConfig(t, "")
	mustRun(t, cfg, "append", "p", "5", `"e"`)

	out := mustRun(t, cfg, "--format", "json", "highest", "p")
	assert.JSONEq(t, `{"status":"ok","data":{"persistence_id":"p","highest":5}}`, out)
}

func TestUpdate(t *testing.T) {
	cfg := writeConfig(t, "")
	mustRun(t, cfg, "append", "p", "1", `{"v":"old"}`)

	assert.Equal(t, "Updated p@1\n", mustRun(t, cfg, "update", "p", "1", `{"v":"new"}`))
	assert.Equal(t, "p 1 json [] {\"v\":\"new\"}\n", mustRun(t, cfg, "replay", "p"))

	// Missing rows are not an error.
	mustRun(t, cfg, "update", "p", "9", `"x"`)
}

func TestEnvOverridesConfig(t *testing.T) {
	cfg := writeConfig(t, "")
	t.Setenv("JOURNAL_TABLE", "env_events")

	mustRun(t, cfg, "append", "p", "1", `"e"`)
	out := mustRun(t, cfg, "--format", "json", "init")
	assert.Contains(t, out, `"journal_table":"env_events"`)
}

func TestEnvInvalidValueIsCommandError(t *testing.T) {
	cfg := writeConfig(t, "")
	t.Setenv("JOURNAL_BATCH_SIZE", "abc")

	_, err := runCLI(t, cfg, "init")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "JOURNAL_BATCH_SIZE")
}
