// Copyright 2021 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gogama/fetchx"
	"github.com/gogama/fetchx/params"
	"github.com/gogama/fetchx/request"
	"gopkg.in/yaml.v3"
)

// Names lists the file names Find looks for, in order of preference.
var Names = []string{".fetchx.yaml", ".fetchx.yml", "fetchx.yaml", "fetchx.yml"}

// ErrNotFound is returned by Find when no configuration file exists in
// the directory or any of its parents.
var ErrNotFound = errors.New("fetchx/config: no configuration file found")

// File is the content of a configuration file.
type File struct {
	Host          string            `yaml:"host"`
	Hosts         map[string]string `yaml:"hosts"`
	HostKey       string            `yaml:"hostKey"`
	Params        yaml.Node         `yaml:"params"`
	StatusMsg     map[int]string    `yaml:"statusMsg"`
	Timeout       Duration          `yaml:"timeout"`
	TimeoutMsg    string            `yaml:"timeoutMsg"`
	AbortMsg      string            `yaml:"abortMsg"`
	CanAbort      *bool             `yaml:"canAbort"`
	PollInterval  Duration          `yaml:"pollInterval"`
	ExportTimeout Duration          `yaml:"exportTimeout"`
	Headers       map[string]string `yaml:"headers"`
}

// Duration is a time.Duration which unmarshals from a Go duration
// string such as "1m30s" or from a whole number of seconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("fetchx/config: line %d: duration must be a scalar", value.Line)
	}
	v, err := ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("fetchx/config: line %d: %w", value.Line, err)
	}
	*d = Duration(v)
	return nil
}

// ParseDuration parses a Go duration string, or an integer which is
// taken as a number of seconds. The empty string is zero.
func ParseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return time.Duration(n) * time.Second, nil
}

// Parse decodes a configuration file. Unknown keys are an error.
func Parse(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("fetchx/config: failed to parse: %w", err)
	}
	return &f, nil
}

// Load reads the configuration file at path and converts it to a
// fetchx.Config.
func Load(path string) (*fetchx.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fetchx/config: failed to read: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, err
	}
	cfg, err := f.Config()
	if err != nil {
		return nil, fmt.Errorf("%w (in %s)", err, path)
	}
	return cfg, nil
}

// Find looks for a configuration file named by one of Names in dir,
// then in each parent of dir, and returns the path of the first one
// found.
func Find(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		for _, name := range Names {
			path := filepath.Join(dir, name)
			if fi, err := os.Stat(path); err == nil && !fi.IsDir() {
				return path, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNotFound
		}
		dir = parent
	}
}

// Config validates f and converts it to a fetchx.Config.
func (f *File) Config() (*fetchx.Config, error) {
	if f.Hosts != nil && f.HostKey != "" {
		if _, ok := f.Hosts[f.HostKey]; !ok {
			return nil, fmt.Errorf("fetchx/config: hostKey %q not in hosts", f.HostKey)
		}
	}
	for name, d := range map[string]Duration{
		"timeout":       f.Timeout,
		"pollInterval":  f.PollInterval,
		"exportTimeout": f.ExportTimeout,
	} {
		if d < 0 {
			return nil, fmt.Errorf("fetchx/config: %s must not be negative", name)
		}
	}
	for code := range f.StatusMsg {
		if code < 100 || code > 999 {
			return nil, fmt.Errorf("fetchx/config: invalid status code %d in statusMsg", code)
		}
	}

	p, err := decodeParams(&f.Params)
	if err != nil {
		return nil, err
	}

	cfg := &fetchx.Config{
		Host:          f.Host,
		Hosts:         f.Hosts,
		HostKey:       f.HostKey,
		Params:        p,
		StatusMsg:     f.StatusMsg,
		Timeout:       time.Duration(f.Timeout),
		TimeoutMsg:    f.TimeoutMsg,
		AbortMsg:      f.AbortMsg,
		CanAbort:      f.CanAbort,
		PollInterval:  time.Duration(f.PollInterval),
		ExportTimeout: time.Duration(f.ExportTimeout),
	}
	if len(f.Headers) > 0 {
		h := make(http.Header, len(f.Headers))
		for k, v := range f.Headers {
			h.Set(k, v)
		}
		cfg.Options = &request.Options{Header: h}
	}
	return cfg, nil
}

// decodeParams decodes a mapping node into Params, keeping the key
// order of the file.
func decodeParams(n *yaml.Node) (*params.Params, error) {
	switch {
	case n.Kind == 0, n.Kind == yaml.ScalarNode && n.Tag == "!!null":
		return nil, nil
	case n.Kind == yaml.MappingNode:
	default:
		return nil, fmt.Errorf("fetchx/config: line %d: params must be a mapping", n.Line)
	}
	p := params.New()
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		var x interface{}
		if err := v.Decode(&x); err != nil {
			return nil, fmt.Errorf("fetchx/config: line %d: param %q: %w", v.Line, k.Value, err)
		}
		p.Set(k.Value, x)
	}
	return p, nil
}
