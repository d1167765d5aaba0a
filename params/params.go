// Copyright 2021 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package params

import (
	"fmt"
	"net/url"
	"sort"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Params is an insertion-ordered mapping from parameter names to
// values. The zero value is not usable; create Params with New,
// FromMap, or FromValues.
//
// Params is not safe for concurrent modification.
type Params struct {
	m *orderedmap.OrderedMap[string, interface{}]
}

// New returns a Params populated from alternating key/value arguments.
//
//	p := params.New("id", 1, "name", "bob")
//
// New panics if kv has an odd number of elements or if any key is not
// a string.
func New(kv ...interface{}) *Params {
	if len(kv)%2 != 0 {
		panic("fetchx/params: odd number of key/value arguments")
	}
	p := &Params{m: orderedmap.New[string, interface{}]()}
	for i := 0; i < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("fetchx/params: key %v is not a string", kv[i]))
		}
		p.m.Set(k, kv[i+1])
	}
	return p
}

// FromMap returns a Params containing the entries of m. Because Go maps
// are unordered, the keys are inserted in sorted order.
func FromMap(m map[string]interface{}) *Params {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	p := New()
	for _, k := range keys {
		p.m.Set(k, m[k])
	}
	return p
}

// FromValues returns a Params containing the first value of each key
// in v, with the keys inserted in sorted order.
func FromValues(v url.Values) *Params {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	p := New()
	for _, k := range keys {
		p.m.Set(k, v.Get(k))
	}
	return p
}

// Set sets the value for key k. If k is already present its value is
// replaced and its position is unchanged; otherwise k is appended.
// Set returns p to allow chaining.
func (p *Params) Set(k string, v interface{}) *Params {
	p.m.Set(k, v)
	return p
}

// Get returns the value for key k and whether it was present.
func (p *Params) Get(k string) (interface{}, bool) {
	if p == nil {
		return nil, false
	}
	return p.m.Get(k)
}

// Delete removes key k.
func (p *Params) Delete(k string) {
	p.m.Delete(k)
}

// Len returns the number of keys. A nil Params has length zero.
func (p *Params) Len() int {
	if p == nil {
		return 0
	}
	return p.m.Len()
}

// Keys returns the keys in insertion order.
func (p *Params) Keys() []string {
	keys := make([]string, 0, p.Len())
	p.Range(func(k string, _ interface{}) bool {
		keys = append(keys, k)
		return true
	})
	return keys
}

// Range calls f for each entry in insertion order, stopping early if f
// returns false. Range on a nil Params does nothing.
func (p *Params) Range(f func(k string, v interface{}) bool) {
	if p == nil {
		return
	}
	for pair := p.m.Oldest(); pair != nil; pair = pair.Next() {
		if !f(pair.Key, pair.Value) {
			return
		}
	}
}

// Clone returns a shallow copy of p. Cloning a nil Params returns an
// empty, usable Params.
func (p *Params) Clone() *Params {
	q := New()
	p.Range(func(k string, v interface{}) bool {
		q.m.Set(k, v)
		return true
	})
	return q
}

// String renders p as a query string. It is intended for logging.
func (p *Params) String() string {
	return Encoded(p)
}

// Merge merges call-supplied parameters over common parameters and
// returns the result as a new Params. Keys of common come first, in
// their own order; a key present in both takes its value from call;
// keys only present in call follow in call's order. Neither argument
// is modified, and either may be nil.
func Merge(common, call *Params) *Params {
	merged := common.Clone()
	call.Range(func(k string, v interface{}) bool {
		merged.m.Set(k, v)
		return true
	})
	return merged
}
