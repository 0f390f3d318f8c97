package config

import (
	"crypto/rand"
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	controller "github.com/m-mizutani/sheetmerge/pkg/controller/http"
	"github.com/urfave/cli/v3"
)

// Server holds server configuration
type Server struct {
	Addr          string
	SessionSecret string `masq:"secret"`
	SessionTTL    time.Duration
	MaxUploadSize int
}

// Flags returns CLI flags for server configuration
func (c *Server) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Server address",
			Value:       "localhost:8080",
			Destination: &c.Addr,
			Sources:     cli.EnvVars("SHEETMERGE_ADDR"),
		},
		&cli.StringFlag{
			Name:        "session-secret",
			Usage:       "HMAC key signing session cookies (random if empty)",
			Destination: &c.SessionSecret,
			Sources:     cli.EnvVars("SHEETMERGE_SESSION_SECRET"),
		},
		&cli.DurationFlag{
			Name:        "session-ttl",
			Usage:       "Idle time after which a session and its files are dropped",
			Value:       controller.DefaultSessionTTL,
			Destination: &c.SessionTTL,
			Sources:     cli.EnvVars("SHEETMERGE_SESSION_TTL"),
		},
		&cli.IntFlag{
			Name:        "max-upload-size",
			Usage:       "Maximum size of one upload request in bytes",
			Value:       controller.DefaultMaxUploadSize,
			Destination: &c.MaxUploadSize,
			Sources:     cli.EnvVars("SHEETMERGE_MAX_UPLOAD_SIZE"),
		},
	}
}

// Validate checks the server configuration
func (c *Server) Validate() error {
	if c.Addr == "" {
		return goerr.New("server address is required")
	}
	if c.SessionTTL <= 0 {
		return goerr.New("session TTL must be positive", goerr.V("session_ttl", c.SessionTTL))
	}
	if c.MaxUploadSize <= 0 {
		return goerr.New("max upload size must be positive", goerr.V("max_upload_size", c.MaxUploadSize))
	}
	return nil
}

// Secret returns the session secret. Without a configured secret a random key
// is generated, so sessions do not survive a restart.
func (c *Server) Secret(logger *slog.Logger) ([]byte, error) {
	if c.SessionSecret != "" {
		return []byte(c.SessionSecret), nil
	}

	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, goerr.Wrap(err, "failed to generate session secret")
	}
	logger.Warn("No session secret configured, using a random one")
	return key, nil
}
