package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ADMIN_IDS", "admin-1, admin-2")
	t.Setenv("APP_MODE", "")
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("PORT", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "dev", cfg.AppMode)
	assert.True(t, cfg.IsDev())
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "file", cfg.StoreDriver)
	assert.Equal(t, []string{"admin-1", "admin-2"}, cfg.AdminIDs)
}

func TestLoadRejectsInvalidMode(t *testing.T) {
	t.Setenv("ADMIN_IDS", "admin-1")
	t.Setenv("APP_MODE", "staging")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsInvalidDriver(t *testing.T) {
	t.Setenv("ADMIN_IDS", "admin-1")
	t.Setenv("APP_MODE", "dev")
	t.Setenv("STORE_DRIVER", "postgres")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRequiresAdminIDs(t *testing.T) {
	t.Setenv("ADMIN_IDS", "")
	t.Setenv("APP_MODE", "dev")
	t.Setenv("STORE_DRIVER", "file")

	_, err := Load()
	assert.Error(t, err)
}

func TestIsAdmin(t *testing.T) {
	cfg := &Config{AdminIDs: []string{"a", "b"}}
	assert.True(t, cfg.IsAdmin("a"))
	assert.False(t, cfg.IsAdmin("c"))
}

func TestDSN(t *testing.T) {
	db := DatabaseConfig{Host: "db", Port: "3306", User: "root", Password: "pw", DBName: "asser"}
	assert.Equal(t, "root:pw@tcp(db:3306)/asser?charset=utf8mb4&parseTime=True&loc=Local", db.DSN())
}
