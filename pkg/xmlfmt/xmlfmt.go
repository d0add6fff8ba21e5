// Package xmlfmt is the public surface for formatting XML documents: it
// wires internal/tokenizer, internal/formatter, and internal/postprocess
// into the single Format entry point described in spec.md §6's source
// surface, plus a Linearize convenience and the PathAt query over
// internal/pathbuilder. Mirrors the teacher's pkg/xml package boundary
// (pkg/ exposes the library API; internal/ hides the mechanism), and
// reuses the teacher's render.go sync.Pool buffer-reuse idiom for the
// output sink.
package xmlfmt

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/shapestone/xmlindent/internal/formatter"
	"github.com/shapestone/xmlindent/internal/pathbuilder"
	"github.com/shapestone/xmlindent/internal/postprocess"
)

// Options mirrors internal/formatter.Options field-for-field (spec.md
// §4.2's parameter table) and adds the one switch that belongs to the
// pipeline rather than the core formatter: whether the six-step cosmetic
// post-pass (spec §6) runs at all.
type Options struct {
	IndentChars        string
	EOLChars           string
	MaxIndentLevel     int
	EnsureConformity   bool
	AutoCloseTags      bool
	IndentAttributes   bool
	IndentOnly         bool
	ApplySpacePreserve bool

	// SkipPostProcess disables the spec §6 cosmetic pass, returning the
	// core formatter's raw output. Tests that assert on the core's
	// pre-CRLF-normalized bytes use this; the CLI never sets it.
	SkipPostProcess bool
}

// DefaultOptions returns the baseline pipeline configuration: the
// formatter's defaults (internal/formatter.DefaultOptions) plus the
// cosmetic post-pass enabled.
func DefaultOptions() Options {
	d := formatter.DefaultOptions()
	return Options{
		IndentChars:        d.IndentChars,
		EOLChars:           d.EOLChars,
		MaxIndentLevel:     d.MaxIndentLevel,
		EnsureConformity:   d.EnsureConformity,
		AutoCloseTags:      d.AutoCloseTags,
		IndentAttributes:   d.IndentAttributes,
		IndentOnly:         d.IndentOnly,
		ApplySpacePreserve: d.ApplySpacePreserve,
	}
}

func (o Options) toFormatterOptions() formatter.Options {
	return formatter.Options{
		IndentChars:        o.IndentChars,
		EOLChars:           o.EOLChars,
		MaxIndentLevel:     o.MaxIndentLevel,
		EnsureConformity:   o.EnsureConformity,
		AutoCloseTags:      o.AutoCloseTags,
		IndentAttributes:   o.IndentAttributes,
		IndentOnly:         o.IndentOnly,
		ApplySpacePreserve: o.ApplySpacePreserve,
	}
}

var bufferPool = sync.Pool{
	New: func() interface{} {
		return bytes.NewBuffer(make([]byte, 0, 1024))
	},
}

func getBuffer() *bytes.Buffer {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

func putBuffer(buf *bytes.Buffer) {
	if buf.Cap() <= 64*1024 {
		bufferPool.Put(buf)
	}
}

// Format reshapes src according to opts and returns the final bytes: the
// core formatter's pretty-print or indent-only pass, followed by the
// spec §6 cosmetic post-pass unless opts.SkipPostProcess is set.
func Format(src []byte, opts Options) ([]byte, error) {
	f := formatter.New(src, opts.toFormatterOptions())
	buf := getBuffer()
	defer putBuffer(buf)

	if err := f.PrettyPrint(buf); err != nil {
		return nil, fmt.Errorf("xmlfmt: format: %w", ErrOutputSink)
	}

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())

	if opts.SkipPostProcess {
		return out, nil
	}
	return postprocess.Apply(out), nil
}

// Linearize strips all formatting-significant whitespace outside
// xml:space="preserve" scopes, per spec.md §4.2's linearize() operation.
// It does not run the cosmetic post-pass: linearized output is meant for
// comparison/diffing, not for human consumption.
func Linearize(src []byte) ([]byte, error) {
	f := formatter.New(src, formatter.DefaultOptions())
	buf := getBuffer()
	defer putBuffer(buf)

	if err := f.Linearize(buf); err != nil {
		return nil, fmt.Errorf("xmlfmt: linearize: %w", ErrOutputSink)
	}
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

// PathMode re-exports internal/pathbuilder.Mode so callers never need to
// import the internal package directly.
type PathMode = pathbuilder.Mode

const (
	PathNameOnly      = pathbuilder.NameOnly
	PathWithNamespace = pathbuilder.WithNamespace
	PathWithIndex     = pathbuilder.WithIndex
	PathWithIdentity  = pathbuilder.WithIdentity
)

// PathAt reports the element path containing bytePosition, per spec.md
// §4.3's current_path operation. identityAttrs registers the attribute
// names PathWithIdentity treats as an element's identity; with none
// given, only "id" is recognized.
func PathAt(src []byte, bytePosition int, mode PathMode, identityAttrs ...string) (string, bool) {
	b := pathbuilder.New(src, mode, identityAttrs...)
	return b.CurrentPath(bytePosition)
}
