// Package formatter implements spec.md §4.2: turning a token.Token stream
// from internal/tokenizer into indented or indent-only XML text. It is
// grounded on the teacher's pkg/xml/render.go, generalized from
// recursive AST-node rendering to a single forward pass over a token
// stream plus an explicit state machine for the indent-only mode.
package formatter

import (
	"bytes"
	"io"

	"github.com/shapestone/xmlindent/internal/token"
	"github.com/shapestone/xmlindent/internal/tokenizer"
)

// frame tracks the state of one currently-open element for the
// mixed-content and empty-element rules in spec.md §4.2.
type frame struct {
	hadChildTag bool // a nested TagOpening/Comment/CDATA/Instruction occurred
	hadText     bool // a non-whitespace Text token occurred directly inside
}

// Formatter renders a Tokenizer's token stream as indented XML. A
// Formatter is single-use per Reset; see Reset for reuse across buffers.
type Formatter struct {
	opts Options
	tok  *tokenizer.Tokenizer
	src  []byte

	indentLevel  int
	levelCounter int
	lastKind     token.Kind
	wroteAny     bool
	endsInBreak  bool

	preserve token.PreserveStack
	stack    []frame
}

// New creates a Formatter over src with opts. opts is normalized per
// spec.md §7 (indent_only silently disables indent_attributes).
func New(src []byte, opts Options) *Formatter {
	f := &Formatter{}
	f.Reset(src, opts)
	return f
}

// Reset reinitializes the formatter over a new (or the same) buffer and
// option set (spec §5: reuse requires an explicit reset).
func (f *Formatter) Reset(src []byte, opts Options) {
	f.opts = opts.normalize()
	f.tok = tokenizer.New(src)
	f.src = src
	f.indentLevel = 0
	f.levelCounter = 0
	f.lastKind = token.Undefined
	f.wroteAny = false
	f.endsInBreak = false
	f.preserve.Reset()
	f.stack = f.stack[:0]
}

// PrettyPrint writes the fully reshaped document to w: every structural
// boundary gets its own line, indented to its nesting depth, per
// spec.md §4.2's algorithm. If opts.IndentOnly is set, PrettyPrint
// delegates to the indent-only state machine instead.
func (f *Formatter) PrettyPrint(w io.Writer) error {
	if f.opts.IndentOnly {
		return f.indentOnly(w)
	}
	for {
		t := f.tok.ParseNext()
		if t.Kind == token.EndOfFile {
			return nil
		}
		if err := f.emit(w, t); err != nil {
			return err
		}
	}
}

// Linearize writes every non-whitespace, non-linebreak token adjacently,
// stripping whitespace and line breaks outside xml:space="preserve"
// scopes and passing them through verbatim inside one (spec §4.2). The
// whitespace that separates attributes within a tag is a syntactic
// requirement, not formatting, so it is never stripped: the token's own
// Context distinguishes the two (spec §4.1's in_opening_tag/
// in_closing_tag fields exist for exactly this kind of question).
func (f *Formatter) Linearize(w io.Writer) error {
	for {
		t := f.tok.ParseNext()
		if t.Kind == token.EndOfFile {
			return nil
		}
		f.trackScopes(t)
		isSeparator := t.Context.InOpeningTag || t.Context.InClosingTag
		if (t.Kind == token.Whitespace || t.Kind == token.LineBreak) && !f.preserve.Top() && !isSeparator {
			continue
		}
		if _, err := w.Write(t.Bytes(f.src)); err != nil {
			return err
		}
	}
}

// trackScopes updates the preserve stack for tokens that open or close an
// element scope, independent of any output decision. Linearize relies on
// this to know when it is inside a preserved scope; PrettyPrint and the
// indent-only pass update the stack themselves.
func (f *Formatter) trackScopes(t token.Token) {
	switch t.Kind {
	case token.TagOpeningEnd:
		f.preserve.Push(f.tok.IsSpacePreserve(false))
	case token.TagSelfClosingEnd:
		// mirrors the tokenizer's own push-then-pop for self-closing
		// elements; Depth() must stay in lockstep with open-element depth.
		f.preserve.Push(f.tok.IsSpacePreserve(false))
		f.preserve.Pop()
	case token.TagClosingEnd:
		f.preserve.Pop()
	}
}

func (f *Formatter) topFrame() *frame {
	if len(f.stack) == 0 {
		return nil
	}
	return &f.stack[len(f.stack)-1]
}

// spacePreserveActive reports whether the current scope's xml:space
// preservation should actually suspend reformatting. The preserve stack
// itself is always tracked (the tokenizer's IsSpacePreserve depends on
// it regardless), but opts.ApplySpacePreserve gates whether a true top of
// stack actually changes emission: when false, reformatting proceeds
// inside the scope as if it were never marked preserved (spec.md §4.2's
// parameter table).
func (f *Formatter) spacePreserveActive() bool {
	return f.opts.ApplySpacePreserve && f.preserve.Top()
}

// suppressBreak reports whether the line break that would normally
// precede a structural token must be withheld: at the very start of
// output, right after a break already written, inside a preserved scope,
// in indent-only mode (which never inserts breaks), or inside mixed
// content (spec §4.2, "the formatter must not insert line breaks inside
// mixed content").
func (f *Formatter) suppressBreak() bool {
	if !f.wroteAny || f.endsInBreak || f.opts.IndentOnly || f.spacePreserveActive() {
		return true
	}
	if parent := f.topFrame(); parent != nil && parent.hadText {
		return true
	}
	return false
}

func (f *Formatter) writeBreakAndIndent(w io.Writer) error {
	if !f.suppressBreak() {
		if _, err := io.WriteString(w, f.opts.EOLChars); err != nil {
			return err
		}
	} else if !f.endsInBreak {
		// No break and not at a line start (e.g. inside mixed content):
		// indentation here would insert bytes mid-line.
		return nil
	}
	level := f.indentLevel
	if f.opts.MaxIndentLevel > 0 && level > f.opts.MaxIndentLevel {
		level = f.opts.MaxIndentLevel
	}
	for i := 0; i < level; i++ {
		if _, err := io.WriteString(w, f.opts.IndentChars); err != nil {
			return err
		}
	}
	return nil
}

func (f *Formatter) write(w io.Writer, p []byte) error {
	if len(p) == 0 {
		return nil
	}
	_, err := w.Write(p)
	f.wroteAny = true
	f.endsInBreak = p[len(p)-1] == '\n' || p[len(p)-1] == '\r'
	return err
}

func (f *Formatter) writeString(w io.Writer, s string) error {
	return f.write(w, []byte(s))
}

// emit renders a single token during the pretty-print pass and advances
// the formatter's bookkeeping state.
func (f *Formatter) emit(w io.Writer, t token.Token) error {
	if f.spacePreserveActive() {
		return f.emitPreserved(w, t)
	}

	switch t.Kind {
	case token.TagOpening:
		if parent := f.topFrame(); parent != nil {
			parent.hadChildTag = true
		}
		if err := f.writeBreakAndIndent(w); err != nil {
			return err
		}
		if err := f.write(w, t.Bytes(f.src)); err != nil {
			return err
		}
		f.indentLevel++
		f.levelCounter++
		f.stack = append(f.stack, frame{})
		f.lastKind = t.Kind
		return nil

	case token.AttrName:
		if err := f.writeAttrSeparator(w); err != nil {
			return err
		}
		if err := f.write(w, t.Bytes(f.src)); err != nil {
			return err
		}
		f.lastKind = t.Kind
		return nil

	case token.Equal, token.AttrValue:
		if err := f.write(w, t.Bytes(f.src)); err != nil {
			return err
		}
		f.lastKind = t.Kind
		return nil

	case token.TagOpeningEnd:
		return f.emitTagOpeningEnd(w, t)

	case token.TagSelfClosingEnd:
		if err := f.write(w, []byte("/>")); err != nil {
			return err
		}
		// Undo the provisional increment TagOpening made; a self-closing
		// element never opens a scope (spec §4.2).
		f.indentLevel--
		f.levelCounter--
		if len(f.stack) > 0 {
			f.stack = f.stack[:len(f.stack)-1]
		}
		if parent := f.topFrame(); parent != nil {
			parent.hadChildTag = true
		}
		f.lastKind = t.Kind
		return nil

	case token.TagClosing:
		fr := frame{}
		if len(f.stack) > 0 {
			fr = f.stack[len(f.stack)-1]
			f.stack = f.stack[:len(f.stack)-1]
		}
		f.indentLevel--
		f.levelCounter--
		suppress := f.suppressBreak() || !fr.hadChildTag || fr.hadText
		if !suppress {
			if _, err := io.WriteString(w, f.opts.EOLChars); err != nil {
				return err
			}
			level := f.indentLevel
			if f.opts.MaxIndentLevel > 0 && level > f.opts.MaxIndentLevel {
				level = f.opts.MaxIndentLevel
			}
			for i := 0; i < level; i++ {
				if _, err := io.WriteString(w, f.opts.IndentChars); err != nil {
					return err
				}
			}
		}
		if err := f.write(w, t.Bytes(f.src)); err != nil {
			return err
		}
		f.lastKind = t.Kind
		return nil

	case token.TagClosingEnd:
		if err := f.write(w, t.Bytes(f.src)); err != nil {
			return err
		}
		f.preserve.Pop()
		f.lastKind = t.Kind
		return nil

	case token.Comment, token.CDATA, token.Instruction, token.DeclarationBeg, token.DeclarationEnd, token.DeclarationSelfClosing:
		if parent := f.topFrame(); parent != nil {
			parent.hadChildTag = true
		}
		if err := f.writeBreakAndIndent(w); err != nil {
			return err
		}
		if err := f.write(w, t.Bytes(f.src)); err != nil {
			return err
		}
		f.lastKind = t.Kind
		return nil

	case token.Text:
		trimmed := bytes.TrimSpace(t.Bytes(f.src))
		if len(trimmed) == 0 {
			if f.opts.EnsureConformity {
				return nil
			}
			// Conformity relaxed: pass the original whitespace-only text
			// through verbatim instead of replacing it with the
			// formatter's own indentation (spec §4.2).
			if err := f.write(w, t.Bytes(f.src)); err != nil {
				return err
			}
			f.lastKind = t.Kind
			return nil
		}
		if parent := f.topFrame(); parent != nil {
			parent.hadText = true
		}
		if f.lastKind == token.Text {
			// Two text runs separated only by a swallowed line break or
			// whitespace run are kept apart by one space.
			if err := f.writeString(w, " "); err != nil {
				return err
			}
		}
		if err := f.write(w, trimmed); err != nil {
			return err
		}
		f.lastKind = t.Kind
		return nil

	case token.Whitespace, token.LineBreak:
		// With conformity relaxed, an element body made only of
		// whitespace is passed through verbatim.
		if !f.opts.EnsureConformity && f.lastKind == token.TagOpeningEnd {
			if next := f.tok.NextStructureToken(); next.Kind == token.TagClosing && len(bytes.TrimSpace(f.src[t.Offset:next.Offset])) == 0 {
				return f.write(w, t.Bytes(f.src))
			}
		}
		// Otherwise, outside a preserved scope the formatter generates its
		// own breaks and indentation; source whitespace is swallowed.
		return nil

	default:
		return nil
	}
}

// writeAttrSeparator decides what precedes an AttrName: a single space
// for the first attribute, and either a space or (with indent_attributes)
// a line break + one extra indent level for every attribute after the
// first.
func (f *Formatter) writeAttrSeparator(w io.Writer) error {
	first := f.lastKind == token.TagOpening
	if first {
		return f.writeString(w, " ")
	}
	if f.opts.IndentAttributes {
		if _, err := io.WriteString(w, f.opts.EOLChars); err != nil {
			return err
		}
		level := f.indentLevel
		if f.opts.MaxIndentLevel > 0 && level > f.opts.MaxIndentLevel {
			level = f.opts.MaxIndentLevel
		}
		for i := 0; i < level; i++ {
			if _, err := io.WriteString(w, f.opts.IndentChars); err != nil {
				return err
			}
		}
		return nil
	}
	return f.writeString(w, " ")
}

// emitTagOpeningEnd decides between the normal ">" and, when
// auto_close_tags is set and the element's body is exactly empty
// (spec §9's resolved default: whitespace-only bodies do not qualify),
// rewriting the pair of TagOpeningEnd/TagClosing+TagClosingEnd tokens
// into a single "/>" .
func (f *Formatter) emitTagOpeningEnd(w io.Writer, t token.Token) error {
	if f.opts.AutoCloseTags {
		next := f.tok.NextStructureToken()
		if next.Kind == token.TagClosing && next.Offset == t.End() {
			f.tok.ParseNext() // the TagClosing we just peeked
			f.tok.ParseNext() // its TagClosingEnd
			if err := f.write(w, []byte("/>")); err != nil {
				return err
			}
			f.indentLevel--
			f.levelCounter--
			if len(f.stack) > 0 {
				f.stack = f.stack[:len(f.stack)-1]
			}
			if parent := f.topFrame(); parent != nil {
				parent.hadChildTag = true
			}
			f.lastKind = token.TagSelfClosingEnd
			return nil
		}
	}
	f.preserve.Push(f.tok.IsSpacePreserve(false))
	if err := f.write(w, []byte(">")); err != nil {
		return err
	}
	f.lastKind = t.Kind
	return nil
}

// emitPreserved passes every token through verbatim while a preserved
// scope is active, still tracking element/preserve depth so the
// formatter notices when the scope ends (spec §4.2: "every byte between
// a tag with preserve and its matching end tag appears verbatim").
func (f *Formatter) emitPreserved(w io.Writer, t token.Token) error {
	switch t.Kind {
	case token.TagOpening:
		f.stack = append(f.stack, frame{})
		f.indentLevel++
		f.levelCounter++
	case token.TagOpeningEnd:
		f.preserve.Push(f.tok.IsSpacePreserve(false))
	case token.TagSelfClosingEnd:
		f.indentLevel--
		f.levelCounter--
		if len(f.stack) > 0 {
			f.stack = f.stack[:len(f.stack)-1]
		}
	case token.TagClosing:
		f.indentLevel--
		f.levelCounter--
		if len(f.stack) > 0 {
			f.stack = f.stack[:len(f.stack)-1]
		}
	case token.TagClosingEnd:
		f.preserve.Pop()
	}
	if err := f.write(w, t.Bytes(f.src)); err != nil {
		return err
	}
	f.lastKind = t.Kind
	return nil
}
