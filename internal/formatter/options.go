package formatter

// Options configures a Formatter, matching the parameter table in
// spec.md §4.2.
type Options struct {
	// IndentChars is written once per indent level. Default: one tab.
	IndentChars string
	// EOLChars is written for every line break the formatter inserts
	// itself. Default: "\n" -- CRLF normalization is the outer tool's
	// post-processing concern (spec §6 step 5), not the core
	// formatter's.
	EOLChars string
	// MaxIndentLevel caps the indent multiplier; deeper levels still
	// count toward the formatter's level counter but stop adding indent
	// chars. Zero means
	// unlimited.
	MaxIndentLevel int
	// EnsureConformity, when true, enforces well-formed output, e.g.
	// never emitting text between sibling tags where the source had
	// none.
	EnsureConformity bool
	// AutoCloseTags rewrites <a></a> pairs with no intervening content
	// as <a/>. Per spec.md §9's open question, this only fires when the
	// body is exactly empty -- not merely whitespace.
	AutoCloseTags bool
	// IndentAttributes places each attribute after the first on its own
	// line, indented one level deeper than its element. Ignored when
	// IndentOnly is set (spec §7, "Configuration conflict").
	IndentAttributes bool
	// IndentOnly, when true, never inserts line breaks; it only rewrites
	// the leading whitespace of each existing line to match the current
	// indent level.
	IndentOnly bool
	// ApplySpacePreserve, when true, suspends all reformatting inside an
	// xml:space="preserve" scope: every byte of the scope is emitted
	// verbatim.
	ApplySpacePreserve bool
}

// DefaultOptions returns the formatter's baseline configuration: one tab
// per indent level, "\n" line breaks, no cap, conformity and
// space-preserve honored, auto-close and attribute-per-line off.
func DefaultOptions() Options {
	return Options{
		IndentChars:        "\t",
		EOLChars:           "\n",
		MaxIndentLevel:     0,
		EnsureConformity:   true,
		AutoCloseTags:      false,
		IndentAttributes:   false,
		IndentOnly:         false,
		ApplySpacePreserve: true,
	}
}

// normalize applies spec §7's "Configuration conflict" policy:
// indent_attributes is well-defined but degenerate under indent_only, so
// it is ignored (not honored) whenever indent_only is set.
func (o Options) normalize() Options {
	if o.IndentOnly {
		o.IndentAttributes = false
	}
	if o.IndentChars == "" {
		o.IndentChars = "\t"
	}
	if o.EOLChars == "" {
		o.EOLChars = "\n"
	}
	return o
}
