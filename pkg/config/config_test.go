package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	uiv1 "github.com/roboricindustries/raycon-display/pkg/schemas/uiinstruction/v1"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	require.Equal(t, uiv1.Channel, cfg.Display.Channel)
	require.Equal(t, 1, cfg.Display.MaxDisplayCount)
	require.Equal(t, 5, cfg.Display.HistorySize)
	require.Equal(t, uiv1.UIInstructionMeta.Exchange, cfg.Transport.Exchange)
	require.True(t, cfg.Query.Enabled)
	require.Equal(t, 5*time.Second, cfg.Query.Timeout.Duration)
}

func TestLoadFromReader(t *testing.T) {
	t.Setenv("RAYCON_DISPLAY_AMQP_URL", "")
	t.Setenv("RAYCON_DISPLAY_LOG_LEVEL", "")
	t.Setenv("RAYCON_DISPLAY_EXCHANGE", "")
	t.Setenv("RAYCON_DISPLAY_MAX_COUNT", "")

	cfg, err := LoadFromReader(strings.NewReader(`
[log]
level = "debug"
format = "json"

[transport]
kind = "amqp"
url = "amqp://u:p@broker:5672/"
retry_delay = "250ms"
workers = 4

[display]
max_display_count = 3

[audit]
enabled = false
`))
	require.NoError(t, err)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, "json", cfg.Log.Format)
	require.Equal(t, "amqp://u:p@broker:5672/", cfg.Transport.URL)
	require.Equal(t, 250*time.Millisecond, cfg.Transport.RetryDelay.Duration)
	require.Equal(t, 4, cfg.Transport.Workers)
	require.Equal(t, uiv1.Exchange, cfg.Transport.Exchange, "unset keys keep defaults")
	require.Equal(t, 3, cfg.Display.MaxDisplayCount)
	require.False(t, cfg.Audit.Enabled)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("RAYCON_DISPLAY_AMQP_URL", "amqp://env/")
	t.Setenv("RAYCON_DISPLAY_LOG_LEVEL", "warn")
	t.Setenv("RAYCON_DISPLAY_MAX_COUNT", "7")

	cfg, err := LoadFromReader(strings.NewReader(`[transport]
url = "amqp://file/"`))
	require.NoError(t, err)
	require.Equal(t, "amqp://env/", cfg.Transport.URL)
	require.Equal(t, "warn", cfg.Log.Level)
	require.Equal(t, 7, cfg.Display.MaxDisplayCount)
}

func TestValidateCollectsErrors(t *testing.T) {
	t.Setenv("RAYCON_DISPLAY_MAX_COUNT", "")
	_, err := LoadFromReader(strings.NewReader(`
[log]
level = "loud"
[transport]
kind = "carrier-pigeon"
[display]
max_display_count = 0
`))
	require.Error(t, err)
	require.ErrorContains(t, err, "log.level")
	require.ErrorContains(t, err, "transport.kind")
	require.ErrorContains(t, err, "display.max_display_count")
}

func TestDurationRejectsNegative(t *testing.T) {
	var d Duration
	require.Error(t, d.UnmarshalText([]byte("-1s")))
	require.Error(t, d.UnmarshalText([]byte("soon")))
	require.NoError(t, d.UnmarshalText([]byte("2s")))
	require.Equal(t, 2*time.Second, d.Duration)
}

func TestDeadLetterNeedsBothNames(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Transport.DeadLetterExchange = "raycon.dlx"
	require.ErrorContains(t, cfg.Validate(), "transport.dead_letter_")

	cfg.Transport.DeadLetterQueue = "raycon.dlq"
	require.NoError(t, cfg.Validate())
}

func TestQuerySection(t *testing.T) {
	t.Setenv("RAYCON_DISPLAY_QUERY_DB", "")
	cfg, err := LoadFromReader(strings.NewReader(`
[query]
path = "/srv/crm.db"
timeout = "750ms"
`))
	require.NoError(t, err)
	require.Equal(t, "/srv/crm.db", cfg.Query.Path)
	require.Equal(t, 750*time.Millisecond, cfg.Query.Timeout.Duration)

	t.Setenv("RAYCON_DISPLAY_QUERY_DB", "/tmp/other.db")
	cfg, err = LoadFromReader(strings.NewReader(`[query]
path = "/srv/crm.db"`))
	require.NoError(t, err)
	require.Equal(t, "/tmp/other.db", cfg.Query.Path)

	cfg = DefaultConfig()
	cfg.Query.Path = ""
	require.ErrorContains(t, cfg.Validate(), "query.path")
	cfg.Query.Enabled = false
	require.NoError(t, cfg.Validate())
}
