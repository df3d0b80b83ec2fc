package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("PUSH_MAX_ATTEMPTS", "")
	t.Setenv("RULES_TIMEZONE", "")
	t.Setenv("REMINDER_CATCHUP", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreMemory, cfg.StoreDriver)
	assert.Equal(t, 3, cfg.PushMaxAttempts)
	assert.Equal(t, "UTC", cfg.RulesTimezone)
	assert.Equal(t, time.UTC, cfg.RulesLocation())
	assert.Equal(t, 24*time.Hour, cfg.ReminderCatchUp)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("PORT", "8080")
	t.Setenv("PUSH_MAX_ATTEMPTS", "5")
	t.Setenv("PUSH_BACKOFF", "2s")
	t.Setenv("RUN_SCHEDULER", "false")
	t.Setenv("RULES_TIMEZONE", "Europe/Sofia")
	t.Setenv("REMINDER_CATCHUP", "6h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 5, cfg.PushMaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.PushBackoff)
	assert.False(t, cfg.RunScheduler)
	assert.Equal(t, "Europe/Sofia", cfg.RulesLocation().String())
	assert.Equal(t, 6*time.Hour, cfg.ReminderCatchUp)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name:    "postgres needs url",
			cfg:     Config{StoreDriver: StorePostgres, RulesTimezone: "UTC", PushMaxAttempts: 1, ReminderWorkers: 1},
			wantErr: "DATABASE_URL",
		},
		{
			name:    "unknown driver",
			cfg:     Config{StoreDriver: "mysql", RulesTimezone: "UTC", PushMaxAttempts: 1, ReminderWorkers: 1},
			wantErr: "unknown STORE_DRIVER",
		},
		{
			name:    "bad timezone",
			cfg:     Config{StoreDriver: StoreMemory, RulesTimezone: "Mars/Olympus", PushMaxAttempts: 1, ReminderWorkers: 1},
			wantErr: "RULES_TIMEZONE",
		},
		{
			name: "ok",
			cfg:  Config{StoreDriver: StoreMemory, RulesTimezone: "UTC", PushMaxAttempts: 1, ReminderWorkers: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
