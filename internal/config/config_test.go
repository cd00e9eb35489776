package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"batch-reconciliation-backend/internal/templates"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TEMPLATE_STORE", "")
	t.Setenv("DB_CONN_MAX_LIFETIME", "")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, TemplateStorePostgres, cfg.TemplateStore)
	assert.Equal(t, 5*time.Minute, cfg.DBConnMaxLifetime)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.True(t, cfg.TelemetryEnabled)
}

func TestLoadRejectsUnknownStore(t *testing.T) {
	t.Setenv("TEMPLATE_STORE", "etcd")
	_, err := Load()
	assert.Error(t, err)
}

func TestGetDSN(t *testing.T) {
	cfg := &Config{DBHost: "db", DBPort: "5432", DBUser: "u", DBPassword: "p", DBName: "n", DBSSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", cfg.GetDSN())
}

func TestLoadTemplateSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.yaml")
	body := `templates:
  - name: Chase
    mapping:
      identifier: Account Number
      amount: Amount
      date: Posting Date
      description: Description
    accountMap:
      Operating: "000123"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	seed, err := LoadTemplateSeed(path)
	require.NoError(t, err)
	assert.Equal(t, templates.DefaultKey, seed.Key)
	require.Len(t, seed.Templates, 1)
	assert.Equal(t, "Account Number", seed.Templates[0].Mapping.Identifier)
	assert.Equal(t, "000123", seed.Templates[0].AccountMap["Operating"])
}

func TestLoadTemplateSeedRequiresNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.yaml")
	require.NoError(t, os.WriteFile(path, []byte("templates:\n  - mapping: {amount: Amount}\n"), 0o644))

	_, err := LoadTemplateSeed(path)
	assert.ErrorIs(t, err, templates.ErrInvalidName)
}

func TestLoadTemplateSeedEmptyPath(t *testing.T) {
	seed, err := LoadTemplateSeed("")
	require.NoError(t, err)
	assert.Empty(t, seed.Templates)
}
