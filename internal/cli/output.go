// Copyright 2021 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gogama/fetchx"
	"github.com/gogama/fetchx/request"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tidwall/gjson"
)

type printer struct {
	out, err io.Writer

	method      *color.Color
	url         *color.Color
	statusOK    *color.Color
	statusWarn  *color.Color
	statusError *color.Color
	success     *color.Color
}

func newPrinter(out, err io.Writer) *printer {
	return &printer{
		out:         out,
		err:         err,
		method:      color.New(color.FgBlue, color.Bold),
		url:         color.New(color.FgCyan),
		statusOK:    color.New(color.FgGreen, color.Bold),
		statusWarn:  color.New(color.FgYellow, color.Bold),
		statusError: color.New(color.FgRed, color.Bold),
		success:     color.New(color.FgGreen),
	}
}

// status prints a one-line summary of a settled fetch.
func (p *printer) status(e *request.Execution) {
	code := e.StatusCode()
	var status string
	switch {
	case code == 0:
		status = p.statusError.Sprint("no response")
	case code < 300:
		status = p.statusOK.Sprint(code)
	case code < 500:
		status = p.statusWarn.Sprint(code)
	default:
		status = p.statusError.Sprint(code)
	}
	fmt.Fprintf(p.err, "%s %s %s %s\n", p.method.Sprint(e.Method()), p.url.Sprint(e.URL), status, e.Duration().Round(time.Millisecond))
}

// result prints res, or the value at selectPath if not empty, after
// validating it against the schema file at schemaPath if not empty.
func (p *printer) result(res *request.Result, selectPath, schemaPath string) error {
	if schemaPath != "" {
		if err := validate(res, schemaPath); err != nil {
			return err
		}
	}

	if selectPath != "" {
		v := res.Get(selectPath)
		if !v.Exists() {
			return &validationError{fmt.Sprintf("no value at %q", selectPath)}
		}
		if v.IsObject() || v.IsArray() {
			_, err := fmt.Fprintln(p.out, gjson.Get(v.Raw, "@pretty").Raw)
			return err
		}
		_, err := fmt.Fprintln(p.out, v.String())
		return err
	}

	switch res.Type {
	case request.JSON:
		_, err := fmt.Fprint(p.out, gjson.GetBytes(res.Data, "@pretty").Raw)
		return err
	case request.Raw:
		_, err := io.Copy(p.out, res.Response.Body)
		return err
	case request.Value:
		_, err := fmt.Fprintln(p.out, res.Value)
		return err
	default:
		_, err := p.out.Write(res.Data)
		return err
	}
}

func (p *printer) file(res *fetchx.FileResult) {
	if res.Path == "" {
		p.success.Fprintln(p.out, res.Msg)
		return
	}
	p.success.Fprintf(p.out, "%s: %s\n", res.Msg, res.Path)
}

// validate checks a JSON result against the JSON schema in the file at
// path.
func validate(res *request.Result, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return &usageError{fmt.Sprintf("schema: %v", err)}
	}
	compiler := jsonschema.NewCompiler()
	if err = compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return &usageError{fmt.Sprintf("invalid schema: %v", err)}
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return &usageError{fmt.Sprintf("invalid schema: %v", err)}
	}

	if res.Type != request.JSON {
		return &validationError{fmt.Sprintf("response is %s, not json", res.Type)}
	}
	err = schema.Validate(res.JSON)
	if ve, ok := err.(*jsonschema.ValidationError); ok {
		return &validationError{"schema validation failed: " + strings.Join(causes(ve, nil), "; ")}
	} else if err != nil {
		return &validationError{err.Error()}
	}
	return nil
}

func causes(ve *jsonschema.ValidationError, acc []string) []string {
	if len(ve.Causes) == 0 {
		loc := ve.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		return append(acc, loc+": "+ve.Message)
	}
	for _, c := range ve.Causes {
		acc = causes(c, acc)
	}
	return acc
}
