// Copyright 2021 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package cli implements the fetchx command.
package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gogama/fetchx"
	"github.com/gogama/fetchx/config"
	"github.com/gogama/fetchx/internal/log"
	"github.com/gogama/fetchx/request"
	"github.com/spf13/cobra"
)

var version = "dev"

// settings holds the persistent flags.
type settings struct {
	configPath string
	host       string
	hostKey    string
	timeout    time.Duration
	headers    []string
	selectPath string
	schemaPath string
	noColor    bool
	verbose    bool
	logLevel   string
	logFormat  string
}

// NewRootCmd returns the fetchx command with all its subcommands.
func NewRootCmd() *cobra.Command {
	s := &settings{}
	root := &cobra.Command{
		Use:   "fetchx",
		Short: "Issue HTTP requests with timeouts, aborts and shared defaults",
		Long: `fetchx issues HTTP requests through a request factory. Defaults such as
the host, common parameters and status messages come from the nearest
.fetchx.yaml file, and can be overridden by flags.

Parameters are given as key=value arguments after the URL.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if s.noColor {
				color.NoColor = true
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&s.configPath, "config", "c", "", "configuration file (default: nearest .fetchx.yaml)")
	pf.StringVar(&s.host, "host", "", "host prefixed to relative URLs")
	pf.StringVar(&s.hostKey, "host-key", "", "key selecting one of the configured hosts")
	pf.DurationVarP(&s.timeout, "timeout", "t", 0, "timeout of the fetch (default from config, else 10s)")
	pf.StringArrayVarP(&s.headers, "header", "H", nil, "request header as 'Key: Value' (repeatable)")
	pf.StringVarP(&s.selectPath, "select", "s", "", "print only the value at this JSON path")
	pf.StringVar(&s.schemaPath, "schema", "", "validate the JSON response against this JSON schema file")
	pf.BoolVar(&s.noColor, "no-color", false, "disable colored output")
	pf.BoolVarP(&s.verbose, "verbose", "v", false, "print the method, URL, status and duration")
	pf.StringVar(&s.logLevel, "log-level", "", "log level: trace, debug, info, warn, error")
	pf.StringVar(&s.logFormat, "log-format", "", "log format: text, json")

	for _, v := range verbs {
		root.AddCommand(newVerbCmd(s, v))
	}
	root.AddCommand(newFileCmd(s))
	return root
}

// Execute runs the fetchx command and returns its exit code.
func Execute() int {
	cmd := NewRootCmd()
	err := cmd.ExecuteContext(context.Background())
	if err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return exitCode(err)
}

// config builds the factory defaults from the configuration file and
// the flags.
func (s *settings) config(cmd *cobra.Command) (*fetchx.Config, error) {
	path := s.configPath
	if path == "" {
		found, err := config.Find(".")
		if err == nil {
			path = found
		} else if !errors.Is(err, config.ErrNotFound) {
			return nil, &configError{err}
		}
	}

	cfg := &fetchx.Config{}
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, &configError{err}
		}
		cfg = loaded
	}

	if s.host != "" {
		cfg.Host = s.host
		cfg.Hosts = nil
	}
	if s.hostKey != "" {
		if _, ok := cfg.Hosts[s.hostKey]; !ok {
			return nil, &configError{fmt.Errorf("unknown host key %q", s.hostKey)}
		}
		cfg.HostKey = s.hostKey
	}
	if s.timeout > 0 {
		cfg.Timeout = s.timeout
	}

	if len(s.headers) > 0 {
		h, err := parseHeaders(s.headers)
		if err != nil {
			return nil, err
		}
		cfg.Options = request.Merge(cfg.Options, &request.Options{Header: h})
	}

	lc := log.FromEnv()
	if s.logLevel != "" {
		lc.Level = strings.ToLower(s.logLevel)
	}
	if s.logFormat != "" {
		lc.Format = log.Format(strings.ToLower(s.logFormat))
	}
	if err := lc.Validate(); err != nil {
		return nil, &configError{err}
	}
	lc.Output = cmd.ErrOrStderr()
	cfg.Logger = log.New(lc)

	return cfg, nil
}

func parseHeaders(raw []string) (http.Header, error) {
	h := make(http.Header, len(raw))
	for _, kv := range raw {
		k, v, ok := strings.Cut(kv, ":")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, &usageError{fmt.Sprintf("invalid header %q, expected 'Key: Value'", kv)}
		}
		h.Add(k, strings.TrimSpace(v))
	}
	return h, nil
}
