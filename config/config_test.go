package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	var cfg Config

	cfg.App.Timezone = "America/New_York"
	cfg.JWT.AccessSecret = "access"
	cfg.JWT.RefreshSecret = "refresh"
	cfg.Scheduler.ReminderCron = "0 18 * * *"

	return cfg
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr []string
	}{
		{
			name:   "valid",
			mutate: func(_ *Config) {},
		},
		{
			name:    "unknown zone",
			mutate:  func(cfg *Config) { cfg.App.Timezone = "Mars/Olympus_Mons" },
			wantErr: []string{`APP_TIMEZONE "Mars/Olympus_Mons"`},
		},
		{
			name:    "host zone is not accepted",
			mutate:  func(cfg *Config) { cfg.App.Timezone = "Local" },
			wantErr: []string{`APP_TIMEZONE "Local"`},
		},
		{
			name: "bad cron only matters when scheduling",
			mutate: func(cfg *Config) {
				cfg.Scheduler.ReminderCron = "every evening"
			},
		},
		{
			name: "every problem is reported",
			mutate: func(cfg *Config) {
				cfg.JWT.RefreshSecret = ""
				cfg.Scheduler.Enable = true
				cfg.Scheduler.ReminderCron = "every evening"
				cfg.Kafka.SASL.Enable = true
			},
			wantErr: []string{"JWT_REFRESH_SECRET", "SCHEDULER_REMINDER_CRON", "KAFKA_SASL_USERNAME"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()

			if len(tt.wantErr) == 0 {
				require.NoError(t, err)

				return
			}

			require.Error(t, err)

			for _, want := range tt.wantErr {
				assert.Contains(t, err.Error(), want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("APP_TIMEZONE", "America/Chicago")
	t.Setenv("JWT_ACCESS_SECRET", "access")
	t.Setenv("JWT_REFRESH_SECRET", "refresh")
	t.Setenv("DB_POSTGRES_READ_HOST", "replica")
	t.Setenv("DB_POSTGRES_WRITE_HOST", "primary")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	var cfg Config
	require.NoError(t, load(&cfg))

	assert.Equal(t, "America/Chicago", cfg.App.Timezone)
	assert.Equal(t, "replica", cfg.DB.Postgres.Read.Host)
	assert.Equal(t, "primary", cfg.DB.Postgres.Write.Host)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "0 18 * * *", cfg.Scheduler.ReminderCron)
	assert.Equal(t, "stagehand.rehearsal.reminder", cfg.Kafka.Topics.Reminder)
}

func TestLoad_RejectsMissingSecrets(t *testing.T) {
	t.Setenv("APP_TIMEZONE", "America/New_York")
	t.Setenv("JWT_ACCESS_SECRET", "")
	t.Setenv("JWT_REFRESH_SECRET", "")

	var cfg Config

	err := load(&cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}
