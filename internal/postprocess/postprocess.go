// Package postprocess implements the cosmetic rewrite pass spec.md §6
// describes as the outer tool's responsibility, kept separate from
// internal/formatter so the core pipeline's output stays byte-stable and
// these purely textual touch-ups can be tested and reasoned about on
// their own. None of these six steps need tokenizer-level structure, so
// they operate directly on the formatted byte slice with the standard
// library's regexp and bytes packages -- no example repo in the pack
// carries a cosmetic text-rewrite dependency for this narrow a job (see
// DESIGN.md).
package postprocess

import (
	"bytes"
	"regexp"
)

var (
	reCommentGTPrefix   = regexp.MustCompile(`>\t<!--|><!--`)
	reSelfCloseQuote    = regexp.MustCompile(`"/>`)
	reSelfCloseNoSpace  = regexp.MustCompile(`([^\s"])/>`)
	reSingleLineComment = regexp.MustCompile(`<!--([^\r\n]*?)-->`)
	reInternalSpaces    = regexp.MustCompile(`[ \t]+`)
)

// Apply runs the full six-step cosmetic pass over src, in the order
// spec.md §6 executes them (step 6, trimming the leading prologue, runs
// first; the rest proceed 1 through 5).
func Apply(src []byte) []byte {
	out := TrimPrologue(src)
	out = SpaceCommentOpeners(out)
	out = SpaceSelfClosing(out)
	out = NormalizeComments(out)
	out = NormalizeLineEndings(out)
	return out
}

// TrimPrologue removes everything before the first '<', clearing BOMs
// and stray leading whitespace (spec §6 step 6).
func TrimPrologue(src []byte) []byte {
	idx := bytes.IndexByte(src, '<')
	if idx <= 0 {
		return src
	}
	return src[idx:]
}

// SpaceCommentOpeners replaces ">\t<!--" and "><!--" with "> <!--" (spec
// §6 step 1).
func SpaceCommentOpeners(src []byte) []byte {
	return reCommentGTPrefix.ReplaceAll(src, []byte("> <!--"))
}

// SpaceSelfClosing ensures every "/>" is preceded by a space, inserting
// one after a quoted attribute value or any other non-space byte; spaces
// already present are left as they are (spec §6 steps 2 and 3).
func SpaceSelfClosing(src []byte) []byte {
	src = reSelfCloseQuote.ReplaceAll(src, []byte(`" />`))
	return reSelfCloseNoSpace.ReplaceAll(src, []byte("$1 />"))
}

// NormalizeComments rewrites every comment that fits on one source line
// (no embedded CR/LF) to "<!-- body -->" with its internal whitespace
// collapsed to single spaces and exactly one space on each side of the
// delimiters. An empty comment becomes "<!-- -->" (spec §6 step 4).
func NormalizeComments(src []byte) []byte {
	return reSingleLineComment.ReplaceAllFunc(src, func(m []byte) []byte {
		body := m[len("<!--") : len(m)-len("-->")]
		body = bytes.TrimSpace(body)
		body = reInternalSpaces.ReplaceAll(body, []byte(" "))
		if len(body) == 0 {
			return []byte("<!-- -->")
		}
		return append(append([]byte("<!-- "), body...), []byte(" -->")...)
	})
}

// NormalizeLineEndings rewrites every line ending to CRLF: a lone CR
// becomes CRLF, a lone LF (not already preceded by CR) becomes CRLF, and
// an existing CRLF is left alone (spec §6 step 5).
func NormalizeLineEndings(src []byte) []byte {
	out := make([]byte, 0, len(src)+len(src)/16)
	for i := 0; i < len(src); i++ {
		b := src[i]
		switch b {
		case '\r':
			out = append(out, '\r', '\n')
			if i+1 < len(src) && src[i+1] == '\n' {
				i++
			}
		case '\n':
			out = append(out, '\r', '\n')
		default:
			out = append(out, b)
		}
	}
	return out
}
