package formatter

import (
	"io"

	"github.com/shapestone/xmlindent/internal/token"
)

// indentOnlyState is the three-state machine from spec.md §4.2's
// indent-only discipline: AtLineStart rewrites the whitespace run that
// opens a line to match the current indent level; InLine passes
// everything through untouched until the next line break; InPreserve
// suspends rewriting entirely for the duration of an
// xml:space="preserve" scope.
type indentOnlyState int

const (
	atLineStart indentOnlyState = iota
	inLine
	inPreserve
)

// indentOnly never inserts line breaks: it only rewrites the leading
// whitespace of each line the source already contains so it matches the
// current nesting depth, leaving every other byte untouched.
func (f *Formatter) indentOnly(w io.Writer) error {
	state := atLineStart
	var preserveDepth int

	for {
		t := f.tok.ParseNext()
		if t.Kind == token.EndOfFile {
			return nil
		}

		switch t.Kind {
		case token.TagOpening:
			if state == atLineStart {
				if err := f.writeIndentOnlyPrefix(w); err != nil {
					return err
				}
				state = inLine
			}
			if _, err := w.Write(t.Bytes(f.src)); err != nil {
				return err
			}
			f.indentLevel++
			f.levelCounter++
			continue

		case token.TagOpeningEnd:
			f.preserve.Push(f.tok.IsSpacePreserve(false))
			if state == inPreserve || f.spacePreserveActive() {
				preserveDepth++
				state = inPreserve
			}
			if _, err := w.Write(t.Bytes(f.src)); err != nil {
				return err
			}
			continue

		case token.TagSelfClosingEnd:
			f.indentLevel--
			f.levelCounter--
			if _, err := w.Write(t.Bytes(f.src)); err != nil {
				return err
			}
			continue

		case token.TagClosing:
			f.indentLevel--
			f.levelCounter--
			if state == atLineStart {
				if err := f.writeIndentOnlyPrefix(w); err != nil {
					return err
				}
				state = inLine
			}
			if _, err := w.Write(t.Bytes(f.src)); err != nil {
				return err
			}
			continue

		case token.TagClosingEnd:
			f.preserve.Pop()
			if state == inPreserve {
				if preserveDepth > 0 {
					preserveDepth--
				}
				if preserveDepth == 0 && !f.spacePreserveActive() {
					state = inLine
				}
			}
			if _, err := w.Write(t.Bytes(f.src)); err != nil {
				return err
			}
			continue

		case token.LineBreak:
			if _, err := w.Write(t.Bytes(f.src)); err != nil {
				return err
			}
			if state != inPreserve {
				state = atLineStart
			}
			continue

		case token.Whitespace:
			if state == atLineStart {
				// This run opens a line: rewrite it to the current indent
				// rather than copying the source's original indentation.
				// If the line starts with a closing tag, that tag's dedent
				// hasn't happened yet -- look ahead so the prefix matches
				// the level the tag itself will render at.
				level := f.indentLevel
				if next := f.tok.NextStructureToken(); next.Kind == token.TagClosing && next.Offset == t.End() && level > 0 {
					level--
				}
				if err := f.writeIndentOnlyPrefixAt(w, level); err != nil {
					return err
				}
				state = inLine
				continue
			}
			if _, err := w.Write(t.Bytes(f.src)); err != nil {
				return err
			}
			continue

		default:
			if state == atLineStart && t.Length > 0 {
				if err := f.writeIndentOnlyPrefix(w); err != nil {
					return err
				}
				state = inLine
			}
			if _, err := w.Write(t.Bytes(f.src)); err != nil {
				return err
			}
			continue
		}
	}
}

func (f *Formatter) writeIndentOnlyPrefix(w io.Writer) error {
	return f.writeIndentOnlyPrefixAt(w, f.indentLevel)
}

func (f *Formatter) writeIndentOnlyPrefixAt(w io.Writer, level int) error {
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
