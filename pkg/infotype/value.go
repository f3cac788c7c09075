package infotype

// Kind discriminates the payload shapes a Value can carry.
type Kind int

const (
	KindText Kind = iota
	KindBool
)

// Value is a runtime payload labelled with exactly one Tag. The tag is the
// value's declared type and may be more specific than the tag a consumer
// asked for; Satisfies answers that question against a registry.
type Value struct {
	Tag  Tag
	Kind Kind
	text string
	flag bool
}

// Text builds a text-valued payload with the given tag.
func Text(tag Tag, s string) Value {
	return Value{Tag: tag, Kind: KindText, text: s}
}

// Flag builds a boolean payload with the given tag.
func Flag(tag Tag, b bool) Value {
	return Value{Tag: tag, Kind: KindBool, flag: b}
}

// Text returns the textual payload. Empty for boolean values.
func (v Value) Text() string { return v.text }

// Bool returns the boolean payload. False for text values.
func (v Value) Bool() bool { return v.flag }

// Satisfies reports whether the value can stand in for required, i.e. its tag
// equals required or is a descendant of it.
func (v Value) Satisfies(r *Registry, required Tag) bool {
	return r.IsSubtype(v.Tag, required)
}
