package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "fetchqb", cmd.Use)
	assert.Contains(t, cmd.Long, "rule trees")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"parse", "build", "fmt", "check", "fields", "ops", "save", "load", "list", "delete", "watch", "test"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	defaults := map[string]string{
		"format":             "text",
		"config":             "",
		"log-level":          "info",
		"log-format":         "pretty",
		"entity-placeholder": "entity",
		"catalog":            "",
		"db":                 "fetchqb.db",
		"preserve-wildcards": "false",
	}
	for name, def := range defaults {
		flag := cmd.PersistentFlags().Lookup(name)
		require.NotNil(t, flag, name)
		assert.Equal(t, def, flag.DefValue, name)
	}
}

func TestSubcommandFlags(t *testing.T) {
	cmd := NewRootCommand()

	buildCmd, _, err := cmd.Find([]string{"build"})
	require.NoError(t, err)
	outputFlag := buildCmd.Flags().Lookup("output")
	require.NotNil(t, outputFlag)
	assert.Equal(t, "o", outputFlag.Shorthand)

	fmtCmd, _, err := cmd.Find([]string{"fmt"})
	require.NoError(t, err)
	writeFlag := fmtCmd.Flags().Lookup("write")
	require.NotNil(t, writeFlag)
	assert.Equal(t, "w", writeFlag.Shorthand)

	watchCmd, _, err := cmd.Find([]string{"watch"})
	require.NoError(t, err)
	for _, name := range []string{"metrics-addr", "debounce", "once"} {
		assert.NotNil(t, watchCmd.Flags().Lookup(name), name)
	}
}

func TestRoot_InvalidFormat(t *testing.T) {
	chdirTo(t, t.TempDir())

	_, err := execute(t, NewRootCommand(), "ops", "number", "--format", "xml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), `invalid format "xml"`)
}

func TestRoot_FlagsReachCommands(t *testing.T) {
	chdirTo(t, t.TempDir())
	rulePath := writeTemp(t, "rule.json", `{"condition":"and","rules":[]}`)

	out, err := execute(t, NewRootCommand(), "--entity-placeholder", "thing", "build", rulePath)
	require.NoError(t, err)
	assert.Contains(t, out, `<entity name="thing"></entity>`)
}

func TestRoot_ConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	chdirTo(t, dir)
	require.NoError(t, os.WriteFile("fetchqb.yaml", []byte("db: from-file.db\nentity-placeholder: fromfile\n"), 0o644))
	t.Setenv("FETCHQB_ENTITY_PLACEHOLDER", "fromenv")
	rulePath := writeTemp(t, "rule.json", `{"condition":"and","rules":[]}`)
	queryPath := writeTemp(t, "q.xml", accountQuery)

	out, err := execute(t, NewRootCommand(), "build", rulePath)
	require.NoError(t, err)
	assert.Contains(t, out, `<entity name="fromenv">`)

	_, err = execute(t, NewRootCommand(), "save", "big", queryPath)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "from-file.db"))
}

func TestRoot_StoreRoundTripThroughDBFlag(t *testing.T) {
	chdirTo(t, t.TempDir())
	db := filepath.Join(t.TempDir(), "q.db")
	queryPath := writeTemp(t, "q.xml", accountQuery)

	_, err := execute(t, NewRootCommand(), "--db", db, "save", "big-accounts", queryPath)
	require.NoError(t, err)

	out, err := execute(t, NewRootCommand(), "--db", db, "--format", "json", "list")
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   []struct {
			Name   string `json:"name"`
			Entity string `json:"entity"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "big-accounts", resp.Data[0].Name)
	assert.Equal(t, "account", resp.Data[0].Entity)
}

func TestRoot_LogsGoToStderr(t *testing.T) {
	chdirTo(t, t.TempDir())
	queryPath := writeTemp(t, "q.xml", "not xml")

	cmd := NewRootCommand()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs([]string{"--log-format", "json", "--log-level", "warn", "parse", queryPath})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Conditions: 0")
	assert.Contains(t, errOut.String(), `"level":"warn"`)
	assert.NotContains(t, out.String(), `"level"`)
}

// chdirTo changes the working directory to dir for the duration of the test,
// restoring the previous directory on cleanup (equivalent of t.Chdir, which
// requires Go 1.24).
func chdirTo(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("chdirTo: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdirTo: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("chdirTo: restoring %s: %v", prev, err)
		}
	})
}
