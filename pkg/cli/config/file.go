package config

import (
	"bytes"
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
)

// File is the optional TOML configuration file. Values in it are used for
// flags that were not given explicitly.
//
//	[server]
//	addr = "0.0.0.0:8080"
//	session_ttl = "1h"
//	max_upload_size = 10485760
//
//	[filter]
//	rows_to_skip = 1
//	column_filter = true
//	column_number = 2
type File struct {
	Path string
}

// FileContent is the schema of the configuration file
type FileContent struct {
	Server struct {
		Addr          string `toml:"addr"`
		SessionSecret string `toml:"session_secret" masq:"secret"`
		SessionTTL    string `toml:"session_ttl"`
		MaxUploadSize int    `toml:"max_upload_size"`
	} `toml:"server"`

	Filter struct {
		RowsToSkip   *int  `toml:"rows_to_skip"`
		ColumnFilter *bool `toml:"column_filter"`
		ColumnNumber *int  `toml:"column_number"`
	} `toml:"filter"`
}

// Flags returns CLI flags for the configuration file
func (c *File) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to a TOML configuration file",
			Destination: &c.Path,
			Sources:     cli.EnvVars("SHEETMERGE_CONFIG"),
		},
	}
}

// Load reads the configuration file. It returns an empty FileContent when no
// path is configured.
func (c *File) Load() (*FileContent, error) {
	var content FileContent
	if c.Path == "" {
		return &content, nil
	}

	raw, err := os.ReadFile(c.Path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V("path", c.Path))
	}

	decoder := toml.NewDecoder(bytes.NewReader(raw))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&content); err != nil {
		return nil, goerr.Wrap(err, "failed to parse config file", goerr.V("path", c.Path))
	}

	return &content, nil
}

// ApplyServer fills server settings for which isSet reports false. Callers
// pass cli.Command.IsSet so that explicit flags win over the file.
func (x *FileContent) ApplyServer(isSet func(name string) bool, cfg *Server) error {
	if x.Server.Addr != "" && !isSet("addr") {
		cfg.Addr = x.Server.Addr
	}
	if x.Server.SessionSecret != "" && !isSet("session-secret") {
		cfg.SessionSecret = x.Server.SessionSecret
	}
	if x.Server.SessionTTL != "" && !isSet("session-ttl") {
		ttl, err := time.ParseDuration(x.Server.SessionTTL)
		if err != nil {
			return goerr.Wrap(err, "invalid session_ttl in config file", goerr.V("session_ttl", x.Server.SessionTTL))
		}
		cfg.SessionTTL = ttl
	}
	if x.Server.MaxUploadSize != 0 && !isSet("max-upload-size") {
		cfg.MaxUploadSize = x.Server.MaxUploadSize
	}
	return nil
}

// ApplyFilter fills filter settings for which isSet reports false
func (x *FileContent) ApplyFilter(isSet func(name string) bool, cfg *Filter) {
	if x.Filter.RowsToSkip != nil && !isSet("rows-to-skip") {
		cfg.RowsToSkip = *x.Filter.RowsToSkip
	}
	if x.Filter.ColumnFilter != nil && !isSet("column-filter") {
		cfg.ColumnFilter = *x.Filter.ColumnFilter
	}
	if x.Filter.ColumnNumber != nil && !isSet("column-number") {
		cfg.ColumnNumber = *x.Filter.ColumnNumber
	}
}
