// Copyright 2021 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/gogama/fetchx"
	"github.com/gogama/fetchx/params"
	"github.com/gogama/fetchx/request"
	"github.com/spf13/cobra"
)

type verbFunc func(f *fetchx.Factory, ctx context.Context, url string, p *params.Params, opts *request.Options, cfg *fetchx.Config) (*request.Result, error)

type verb struct {
	name  string
	short string
	call  verbFunc
	files bool
}

var verbs = []verb{
	{"get", "Issue a GET with the parameters as a query string", (*fetchx.Factory).Get, false},
	{"post", "Issue a POST with the parameters URL-encoded in the body", (*fetchx.Factory).Post, false},
	{"put", "Issue a PUT with the parameters URL-encoded in the body", (*fetchx.Factory).Put, false},
	{"delete", "Issue a DELETE with the parameters as a query string", (*fetchx.Factory).Delete, false},
	{"form", "Issue a multipart POST; key=@path sends a file", (*fetchx.Factory).Form, true},
}

func newVerbCmd(s *settings, v verb) *cobra.Command {
	return &cobra.Command{
		Use:   v.name + " URL [key=value ...]",
		Short: v.short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerb(cmd, s, v, args)
		},
	}
}

func runVerb(cmd *cobra.Command, s *settings, v verb, args []string) error {
	cfg, err := s.config(cmd)
	if err != nil {
		return err
	}
	p, closeFiles, err := parseParams(args[1:], v.files)
	if err != nil {
		return err
	}
	defer closeFiles()

	var last *request.Execution
	handlers := &fetchx.HandlerGroup{}
	handlers.PushBack(fetchx.AfterSettle, fetchx.HandlerFunc(func(_ fetchx.Event, e *request.Execution) {
		last = e
	}))
	cfg.Handlers = handlers

	f := fetchx.NewFactory(cfg)
	stop := abortOnInterrupt(f)
	defer stop()

	res, err := v.call(f, cmd.Context(), args[0], p, nil, nil)
	out := newPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr())
	if s.verbose && last != nil {
		out.status(last)
	}
	if err != nil {
		return err
	}
	return out.result(res, s.selectPath, s.schemaPath)
}

func newFileCmd(s *settings) *cobra.Command {
	var dir, name string
	cmd := &cobra.Command{
		Use:   "file URL [key=value ...]",
		Short: "POST the parameters and save the response as a file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := s.config(cmd)
			if err != nil {
				return err
			}
			p, closeFiles, err := parseParams(args[1:], false)
			if err != nil {
				return err
			}
			defer closeFiles()

			f := fetchx.NewFactory(cfg)
			stop := abortOnInterrupt(f)
			defer stop()

			res, err := f.File(cmd.Context(), args[0], p, dir, name, nil)
			if err != nil {
				return err
			}
			newPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr()).file(res)
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "directory to save the file in")
	cmd.Flags().StringVarP(&name, "name", "n", "", "file name (default from the response)")
	return cmd
}

// parseParams parses key=value arguments in order. When files is true,
// a value of the form @path is replaced by the named file, and the
// returned function closes the files opened.
func parseParams(args []string, files bool) (*params.Params, func(), error) {
	var opened []io.Closer
	closeAll := func() {
		for _, c := range opened {
			_ = c.Close()
		}
	}

	p := params.New()
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		if !ok || k == "" {
			closeAll()
			return nil, nil, &usageError{fmt.Sprintf("invalid parameter %q, expected key=value", arg)}
		}
		if files && strings.HasPrefix(v, "@") {
			fh, err := os.Open(v[1:])
			if err != nil {
				closeAll()
				return nil, nil, &usageError{fmt.Sprintf("parameter %q: %v", k, err)}
			}
			opened = append(opened, fh)
			p.Set(k, &params.File{Name: filepath.Base(fh.Name()), Reader: fh})
			continue
		}
		p.Set(k, v)
	}
	return p, closeAll, nil
}

// abortOnInterrupt aborts every live instance of f on the first
// interrupt signal, until the returned function is called.
func abortOnInterrupt(f *fetchx.Factory) func() {
	ch := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(ch, os.Interrupt)
	go func() {
		select {
		case <-ch:
			f.Clear()
		case <-done:
		}
	}()
	return func() {
		signal.Stop(ch)
		close(done)
	}
}
