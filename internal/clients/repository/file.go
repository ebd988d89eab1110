package repository

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	domain "github.com/lom3e/Formingo/internal/clients/domain"
	"github.com/lom3e/Formingo/internal/logger"
)

// Table is an in-memory credential table. It is never mutated after construction,
// so concurrent lookups need no locking.
type Table struct {
	clients map[string]domain.Client
}

var _ domain.Repository = (*Table)(nil)

// New builds a table from an already parsed mapping. The map is copied.
func New(clients map[string]domain.Client) *Table {
	t := &Table{clients: make(map[string]domain.Client, len(clients))}
	for k, v := range clients {
		if k == "" {
			continue
		}
		t.clients[k] = v
	}
	return t
}

// Parse decodes a clients.json document: an object mapping API key to client record.
func Parse(data []byte) (*Table, error) {
	var raw map[string]domain.Client
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse clients: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("parse clients: document is not an object")
	}
	return New(raw), nil
}

// ReadFile reads and parses a clients.json file, reporting any failure.
func ReadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read clients: %w", err)
	}
	return Parse(data)
}

// Load reads the credential table at startup. Failures are logged and yield an
// empty table: the service stays up and every authentication attempt fails.
func Load(path string, log zerolog.Logger) *Table {
	t, err := ReadFile(path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("credential table unavailable, all api keys will be rejected")
		return New(nil)
	}
	log.Info().Int("clients", t.Len()).Str("path", path).Msg("credential table loaded")
	return t
}

func (t *Table) Lookup(apiKey string) (domain.Client, bool) {
	if apiKey == "" {
		return domain.Client{}, false
	}
	c, ok := t.clients[apiKey]
	return c, ok
}

func (t *Table) Len() int { return len(t.clients) }

// Problems lists records that cannot send mail or verify tokens, keyed by a masked API key.
func (t *Table) Problems() []string {
	var out []string
	for key, c := range t.clients {
		var missing []string
		if c.ClientID == "" {
			missing = append(missing, "clientId")
		}
		if c.Email == "" {
			missing = append(missing, "email")
		}
		if c.GmailPass == "" {
			missing = append(missing, "gmailPass")
		}
		if c.RecaptchaSecret == "" {
			missing = append(missing, "recaptchaSecret")
		}
		if len(missing) > 0 {
			out = append(out, fmt.Sprintf("%s: missing %s", logger.MaskSecret(key), strings.Join(missing, ", ")))
		}
	}
	sort.Strings(out)
	return out
}
