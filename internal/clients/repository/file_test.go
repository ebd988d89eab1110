package repository

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/lom3e/Formingo/internal/clients/domain"
	"github.com/lom3e/Formingo/internal/logger"
)

const sampleClients = `{
  "key-acme-123": {"clientId": "acme", "recaptchaSecret": "rs-acme", "email": "forms@acme.test", "gmailPass": "pw-acme"},
  "key-globex-456": {"clientId": "globex", "recaptchaSecret": "rs-globex", "email": "hello@globex.test", "gmailPass": "pw-globex", "adminEmail": "ops@globex.test"}
}`

func writeFile(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "clients.json")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoad_ValidFile(t *testing.T) {
	tbl := Load(writeFile(t, sampleClients), logger.Nop())
	require.Equal(t, 2, tbl.Len())

	c, ok := tbl.Lookup("key-acme-123")
	require.True(t, ok)
	assert.Equal(t, "acme", c.ClientID)
	assert.Equal(t, "rs-acme", c.RecaptchaSecret)
	assert.Equal(t, "forms@acme.test", c.AdminAddress())

	g, ok := tbl.Lookup("key-globex-456")
	require.True(t, ok)
	assert.Equal(t, "ops@globex.test", g.AdminAddress())
}

func TestLookup_ExactCaseSensitive(t *testing.T) {
	tbl := Load(writeFile(t, sampleClients), logger.Nop())

	for _, k := range []string{"KEY-ACME-123", "key-acme-123 ", "key-acme", ""} {
		_, ok := tbl.Lookup(k)
		assert.False(t, ok, "key %q must not match", k)
	}
}

func TestLoad_FailsClosed(t *testing.T) {
	cases := map[string]string{
		"missing file": filepath.Join(t.TempDir(), "nope.json"),
		"bad json":     writeFile(t, `{"key": `),
		"not object":   writeFile(t, `null`),
	}
	for name, path := range cases {
		t.Run(name, func(t *testing.T) {
			tbl := Load(path, logger.Nop())
			require.NotNil(t, tbl)
			assert.Equal(t, 0, tbl.Len())
			_, ok := tbl.Lookup("key-acme-123")
			assert.False(t, ok)
		})
	}
}

func TestReadFile_ReportsError(t *testing.T) {
	_, err := ReadFile(writeFile(t, `[1,2]`))
	require.Error(t, err)
}

func TestProblems_ReportsIncompleteRecords(t *testing.T) {
	tbl := New(map[string]domain.Client{
		"complete-key": {ClientID: "ok", Email: "a@b.co", GmailPass: "p", RecaptchaSecret: "r"},
		"partial-key":  {ClientID: "partial", Email: "a@b.co"},
	})
	problems := tbl.Problems()
	require.Len(t, problems, 1)
	assert.Equal(t, "part…: missing gmailPass, recaptchaSecret", problems[0])
}
