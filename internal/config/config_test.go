package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func viperWith(overrides map[string]any) *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	for key, value := range overrides {
		v.Set(key, value)
	}
	return v
}

func TestFromViperDefaults(t *testing.T) {
	cfg, err := FromViper(viperWith(nil))
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.AppPort)
	assert.Equal(t, StoreMongo, cfg.StoreDriver)
	assert.Equal(t, "vajraDB", cfg.MongoDatabase)
	assert.Equal(t, "INR", cfg.Currency)
	assert.Equal(t, 10*time.Minute, cfg.OTPTTL)
	assert.True(t, cfg.PaymentConfirm)
	assert.False(t, cfg.IsProduction())
}

func TestFromViperOverrides(t *testing.T) {
	cfg, err := FromViper(viperWith(map[string]any{
		"STORE_DRIVER":    "Postgres",
		"PUBLIC_BASE_URL": "https://shop.example.com/",
		"CURRENCY":        "usd",
		"OTP_TTL":         "5m",
		"PAYMENT_CONFIRM": false,
		"SMTP_USER":       "mailer@example.com",
	}))
	require.NoError(t, err)

	assert.Equal(t, StorePostgres, cfg.StoreDriver)
	assert.Equal(t, "https://shop.example.com", cfg.PublicBaseURL)
	assert.Equal(t, "USD", cfg.Currency)
	assert.Equal(t, 5*time.Minute, cfg.OTPTTL)
	assert.False(t, cfg.PaymentConfirm)
	assert.Equal(t, "mailer@example.com", cfg.SMTPFrom)
}

func TestFromViperRejectsUnknownDriver(t *testing.T) {
	_, err := FromViper(viperWith(map[string]any{"STORE_DRIVER": "redis"}))

	var cfgErr *Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "STORE_DRIVER", cfgErr.Key)
}

func TestFromViperRequiresDatabaseURLForPostgres(t *testing.T) {
	_, err := FromViper(viperWith(map[string]any{
		"STORE_DRIVER": "postgres",
		"DATABASE_URL": "",
	}))
	assert.EqualError(t, err, "DATABASE_URL: must be set")
}
