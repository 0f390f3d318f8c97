package config_test

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/sheetmerge/pkg/cli/config"
	"github.com/m-mizutani/sheetmerge/pkg/domain/model"
)

func TestServer_Validate(t *testing.T) {
	valid := config.Server{Addr: "localhost:8080", SessionTTL: time.Minute, MaxUploadSize: 1}
	gt.NoError(t, valid.Validate())

	noAddr := valid
	noAddr.Addr = ""
	gt.Error(t, noAddr.Validate())

	noTTL := valid
	noTTL.SessionTTL = 0
	gt.Error(t, noTTL.Validate())

	noSize := valid
	noSize.MaxUploadSize = -1
	gt.Error(t, noSize.Validate())
}

func TestServer_Secret(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	t.Run("configured", func(t *testing.T) {
		secret, err := (&config.Server{SessionSecret: "abc"}).Secret(logger)
		gt.NoError(t, err)
		gt.Value(t, string(secret)).Equal("abc")
	})

	t.Run("generated", func(t *testing.T) {
		cfg := &config.Server{}
		s1, err := cfg.Secret(logger)
		gt.NoError(t, err)
		s2, err := cfg.Secret(logger)
		gt.NoError(t, err)

		gt.Value(t, len(s1)).Equal(32)
		gt.False(t, bytes.Equal(s1, s2))
		gt.True(t, bytes.Contains(buf.Bytes(), []byte("No session secret configured")))
	})
}

func TestFilter_Settings(t *testing.T) {
	gt.Value(t, (&config.Filter{RowsToSkip: -2, ColumnNumber: 0}).Settings()).
		Equal(model.DefaultFilterSettings())

	gt.Value(t, (&config.Filter{RowsToSkip: 1, ColumnFilter: true, ColumnNumber: 3}).Settings()).
		Equal(model.FilterSettings{RowsToSkip: 1, ColumnFilterEnabled: true, ColumnNumber: 3})
}

func TestSentry_Disabled(t *testing.T) {
	cfg := &config.Sentry{}
	gt.False(t, cfg.Enabled())

	flush, err := cfg.Configure()
	gt.NoError(t, err)
	flush()
}
