package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fetchqb/internal/session"
)

func TestWatch_Once(t *testing.T) {
	path := writeTemp(t, "q.xml", accountQuery)

	out, err := execute(t, NewWatchCommand(testOptions(t)), path, "--once")
	require.NoError(t, err)
	assert.Equal(t, "-- 1\n"+accountCanonical+"\n", out)
}

func TestWatch_OnceWithCatalogFields(t *testing.T) {
	path := writeTemp(t, "q.xml", accountQuery)

	out, err := execute(t, NewWatchCommand(catalogOptions(t)), path, "--once")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "-- 1\n"), out)
	assert.Contains(t, out, `<attribute name="createdon" />`)
	assert.Contains(t, out, `<attribute name="donotemail" />`)
}

func TestWatch_OnceJSON(t *testing.T) {
	opts := testOptions(t)
	opts.Format = "json"
	path := writeTemp(t, "q.xml", "<fetch>broken")

	out, err := execute(t, NewWatchCommand(opts), path, "--once")
	require.NoError(t, err)

	var resp struct {
		Status string         `json:"status"`
		Data   session.Change `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, int64(1), resp.Data.Seq)
	assert.NotEmpty(t, resp.Data.SessionID)
	assert.Equal(t, "<fetch mapping=\"logical\">\n  <entity name=\"entity\"></entity>\n</fetch>", resp.Data.XML)
}

func TestWatch_OnceMissingFile(t *testing.T) {
	out, err := execute(t, NewWatchCommand(testOptions(t)), filepath.Join(t.TempDir(), "missing.xml"), "--once")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E002]")
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	path := writeTemp(t, "q.xml", accountQuery)

	cmd := NewWatchCommand(testOptions(t))
	out := &syncBuffer{}
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{path, "--debounce", "20ms"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	require.Eventually(t, func() bool { return out.Contains("-- 1\n") }, 5*time.Second, 10*time.Millisecond)

	contact := `<fetch><entity name="contact"><attribute name="lastname"/></entity></fetch>`
	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte(contact), 0o644)
		return out.Contains(`<entity name="contact">`)
	}, 5*time.Second, 100*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestWatch_ServesMetrics(t *testing.T) {
	path := writeTemp(t, "q.xml", accountQuery)
	addr := freeAddr(t)

	cmd := NewWatchCommand(testOptions(t))
	cmd.SetOut(&syncBuffer{})
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{path, "--metrics-addr", addr})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	var body string
	require.Eventually(t, func() bool {
		resp, err := http.Get(fmt.Sprintf("http://%s/metrics", addr))
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return false
		}
		body = string(data)
		return strings.Contains(body, "fetchqb_emit_total 1")
	}, 5*time.Second, 20*time.Millisecond)

	assert.Contains(t, body, `fetchqb_serialize_total{outcome="ok"} 1`)
}

func freeAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return addr
}
