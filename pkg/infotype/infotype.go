// Package infotype defines the semantic categories of data flowing between
// agents and the single-parent subtype hierarchy relating them.
//
// A Registry is append-only: tags are declared during startup and never
// removed or redefined, so subtype answers computed against it stay valid for
// the lifetime of the process and concurrent readers need no locking once
// registration is complete.
package infotype

import (
	"sort"

	"github.com/dlanger/typecast/pkg/errors"
)

// Tag names a semantic data category.
type Tag string

// Built-in tags. SourceText, Summary, Transcript and Bool are roots;
// the rest hang off Summary and Transcript.
const (
	SourceText             Tag = "SourceText"
	Summary                Tag = "Summary"
	Narrative              Tag = "Narrative"
	Acts                   Tag = "Acts"
	IndepthSummary         Tag = "IndepthSummary"
	Transcript             Tag = "Transcript"
	PersonalizedTranscript Tag = "PersonalizedTranscript"
	Bool                   Tag = "Bool"
)

// Registry holds the subtype forest. Each tag has at most one parent and the
// parent chain is acyclic because a parent must already be registered.
type Registry struct {
	parents map[Tag]Tag
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{parents: make(map[Tag]Tag)}
}

// Builtin returns a registry preloaded with the podcast pipeline hierarchy:
//
//	SourceText
//	Summary > Narrative, Acts, IndepthSummary
//	Transcript > PersonalizedTranscript
//	Bool
func Builtin() *Registry {
	r := NewRegistry()
	for _, decl := range []struct {
		tag    Tag
		parent Tag
	}{
		{SourceText, ""},
		{Summary, ""},
		{Narrative, Summary},
		{Acts, Summary},
		{IndepthSummary, Summary},
		{Transcript, ""},
		{PersonalizedTranscript, Transcript},
		{Bool, ""},
	} {
		if err := r.Register(decl.tag, decl.parent); err != nil {
			// The built-in hierarchy is fixed; a failure here is a programming error.
			panic(err)
		}
	}
	return r
}

// Register adds a tag under the given parent. An empty parent declares a root.
// Tags are additive only: there is no removal or redefinition.
func (r *Registry) Register(tag Tag, parent Tag) error {
	if tag == "" {
		return errors.New(errors.CodeInvalidInput, "type tag name is required", nil)
	}
	if _, exists := r.parents[tag]; exists {
		return errors.Newf(errors.CodeDuplicateType, "type tag %q is already registered", tag)
	}
	if parent != "" {
		if _, ok := r.parents[parent]; !ok {
			return errors.Newf(errors.CodeUnknownParent, "parent tag %q is not registered", parent).
				WithContext("tag", string(tag))
		}
	}
	r.parents[tag] = parent
	return nil
}

// Known reports whether the tag is registered.
func (r *Registry) Known(tag Tag) bool {
	_, ok := r.parents[tag]
	return ok
}

// IsSubtype reports whether a equals b or b is reachable by following parent
// links from a. Pure and total: the forest is finite and acyclic.
func (r *Registry) IsSubtype(a, b Tag) bool {
	for cur := a; cur != ""; cur = r.parents[cur] {
		if cur == b {
			return true
		}
		if _, ok := r.parents[cur]; !ok {
			return false
		}
	}
	return false
}

// Tags returns all registered tags in sorted order.
func (r *Registry) Tags() []Tag {
	out := make([]Tag, 0, len(r.parents))
	for tag := range r.parents {
		out = append(out, tag)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Parent returns the parent of tag, or "" for roots and unknown tags.
func (r *Registry) Parent(tag Tag) Tag {
	return r.parents[tag]
}
