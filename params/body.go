// Copyright 2021 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package params

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"net/url"
	"reflect"
	"strconv"
	"strings"
)

// A Kind identifies the serialization format of a Body.
type Kind int

const (
	// Query is a URL-encoded key=value sequence joined by '&'.
	Query Kind = iota
	// Form is a multipart/form-data body.
	Form
)

// String returns "query" or "form".
func (k Kind) String() string {
	switch k {
	case Query:
		return "query"
	case Form:
		return "form"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// A Body is a serialized parameter set, ready to be appended to a URL
// or sent as a request body.
type Body struct {
	// Kind is the serialization format of Data.
	Kind Kind

	// Data holds the serialized parameters.
	Data []byte

	// ContentType is the media type of a Form body, including its
	// multipart boundary. It is empty for Query bodies: whether a query
	// body is sent as application/x-www-form-urlencoded is decided by
	// the caller.
	ContentType string
}

// String returns the serialized data as a string.
func (b *Body) String() string {
	if b == nil {
		return ""
	}
	return string(b.Data)
}

// Len returns the length of the serialized data.
func (b *Body) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Data)
}

// A File is a file-like parameter value. When serialized as a Form, it
// becomes a file part carrying Name as its filename.
type File struct {
	// Name is the filename reported in the part's Content-Disposition.
	// If empty, "blob" is used.
	Name string

	// ContentType is the part's media type. If empty,
	// application/octet-stream is used.
	ContentType string

	// Reader supplies the file contents.
	Reader io.Reader
}

// QueryBody serializes p as a Query body.
func QueryBody(p *Params) *Body {
	return &Body{Kind: Query, Data: []byte(Encoded(p))}
}

// Encoded serializes p to a query string. Entries are emitted in
// insertion order as key=Encode(value). Entries whose value is nil, a
// typed nil, or the empty string are omitted entirely.
//
// Keys are emitted verbatim.
func Encoded(p *Params) string {
	var sb strings.Builder
	p.Range(func(k string, v interface{}) bool {
		if isEmpty(v) {
			return true
		}
		if sb.Len() > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(Encode(stringify(v)))
		return true
	})
	return sb.String()
}

var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// Encode percent-encodes s as a URI component: every byte except the
// unreserved characters A-Z a-z 0-9 - _ . ! ~ * ' ( ) is escaped, and
// spaces are encoded as %20 rather than '+'.
func Encode(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}

// Multipart serializes p as a multipart/form-data body with one part
// per key, in insertion order.
//
// Values of type *File, File, []byte, and io.Reader become file parts;
// every other value becomes a text field. A nil value becomes an empty
// text field.
func Multipart(p *Params) (*Body, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	var err error
	p.Range(func(k string, v interface{}) bool {
		err = writePart(w, k, v)
		return err == nil
	})
	if err != nil {
		return nil, err
	}
	if err = w.Close(); err != nil {
		return nil, err
	}
	return &Body{
		Kind:        Form,
		Data:        buf.Bytes(),
		ContentType: w.FormDataContentType(),
	}, nil
}

func writePart(w *multipart.Writer, k string, v interface{}) error {
	switch x := v.(type) {
	case File:
		return writeFile(w, k, &x)
	case *File:
		if x == nil {
			return w.WriteField(k, "")
		}
		return writeFile(w, k, x)
	case []byte:
		return writeFile(w, k, &File{Reader: bytes.NewReader(x)})
	case io.Reader:
		return writeFile(w, k, &File{Reader: x})
	default:
		if isNil(v) {
			return w.WriteField(k, "")
		}
		return w.WriteField(k, stringify(v))
	}
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func writeFile(w *multipart.Writer, k string, f *File) error {
	name := f.Name
	if name == "" {
		name = "blob"
	}
	ct := f.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(k), quoteEscaper.Replace(name)))
	h.Set("Content-Type", ct)
	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	if f.Reader == nil {
		return nil
	}
	_, err = io.Copy(part, f.Reader)
	return err
}

func stringify(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(v)
	}
}

func isEmpty(v interface{}) bool {
	if s, ok := v.(string); ok {
		return s == ""
	}
	return isNil(v)
}

func isNil(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
