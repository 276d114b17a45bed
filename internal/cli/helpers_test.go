package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fetchqb/internal/config"
)

const accountQuery = `<fetch>
  <entity name="account">
    <attribute name="name"/>
    <filter>
      <condition attribute="revenue" operator="gt" value="1000"/>
    </filter>
  </entity>
</fetch>`

const accountCanonical = `<fetch mapping="logical">
  <entity name="account">
    <attribute name="name" />
    <attribute name="revenue" />
    <filter type="and">
      <condition attribute="revenue" operator="gt" value="1000" />
    </filter>
  </entity>
</fetch>`

const testCatalog = `entities:
  - name: account
    displayName: Account
    fields:
      - name: name
        displayName: Account Name
        attributeType: String
      - name: revenue
        displayName: Annual Revenue
        attributeType: Money
      - name: createdon
        displayName: Created On
        attributeType: DateTime
      - name: donotemail
        attributeType: Boolean
  - name: contact
    fields:
      - name: lastname
        attributeType: String
`

// testOptions returns text-format options over a default configuration
// whose database lives in a temp dir.
func testOptions(t *testing.T) *RootOptions {
	t.Helper()
	cfg := config.Default()
	cfg.DB = filepath.Join(t.TempDir(), "fetchqb.db")
	return &RootOptions{Format: "text", Config: &cfg}
}

// execute runs cmd with args and returns what it wrote to stdout.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// syncBuffer is a bytes.Buffer safe for a writer goroutine and a reader.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *syncBuffer) Contains(s string) bool {
	return strings.Contains(b.String(), s)
}
