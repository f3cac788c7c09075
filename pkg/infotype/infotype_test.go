package infotype

import (
	"testing"

	"github.com/dlanger/typecast/pkg/errors"
)

func TestBuiltinHierarchy(t *testing.T) {
	r := Builtin()

	cases := []struct {
		a, b Tag
		want bool
	}{
		{Narrative, Summary, true},
		{Acts, Summary, true},
		{IndepthSummary, Summary, true},
		{PersonalizedTranscript, Transcript, true},
		{Summary, Narrative, false},
		{Transcript, Summary, false},
		{SourceText, Summary, false},
		{Bool, Bool, true},
	}
	for _, tc := range cases {
		if got := r.IsSubtype(tc.a, tc.b); got != tc.want {
			t.Errorf("IsSubtype(%s, %s) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestSubtypeReflexive(t *testing.T) {
	r := Builtin()
	for _, tag := range r.Tags() {
		if !r.IsSubtype(tag, tag) {
			t.Errorf("IsSubtype(%s, %s) must hold", tag, tag)
		}
	}
}

func TestSubtypeTransitive(t *testing.T) {
	r := Builtin()
	tags := r.Tags()
	for _, a := range tags {
		for _, b := range tags {
			if !r.IsSubtype(a, b) {
				continue
			}
			for _, c := range tags {
				if r.IsSubtype(b, c) && !r.IsSubtype(a, c) {
					t.Errorf("transitivity violated: %s<=%s and %s<=%s but not %s<=%s", a, b, b, c, a, c)
				}
			}
		}
	}
}

func TestRegisterDuplicate(t *testing.T) {
	r := NewRegistry()
	if err := r.Register("Summary", ""); err != nil {
		t.Fatalf("register: %v", err)
	}
	err := r.Register("Summary", "")
	if !errors.IsCode(err, errors.CodeDuplicateType) {
		t.Fatalf("expected DUPLICATE_TYPE, got %v", err)
	}
}

func TestRegisterUnknownParent(t *testing.T) {
	r := NewRegistry()
	err := r.Register("Narrative", "Summary")
	if !errors.IsCode(err, errors.CodeUnknownParent) {
		t.Fatalf("expected UNKNOWN_PARENT, got %v", err)
	}
}

func TestRegisterExtendsBuiltin(t *testing.T) {
	r := Builtin()
	if err := r.Register("Haiku", Summary); err != nil {
		t.Fatalf("register: %v", err)
	}
	if !r.IsSubtype("Haiku", Summary) {
		t.Fatal("new tag must be a subtype of its parent")
	}
	if !r.IsSubtype("Haiku", "Haiku") {
		t.Fatal("new tag must be a subtype of itself")
	}
}

func TestUnknownTagsAreNotSubtypes(t *testing.T) {
	r := Builtin()
	if r.IsSubtype("Nope", Summary) {
		t.Fatal("unknown tag must not be a subtype of anything else")
	}
}

func TestValuePayloads(t *testing.T) {
	v := Text(Narrative, "a story")
	if v.Kind != KindText || v.Text() != "a story" {
		t.Fatalf("unexpected text value: %+v", v)
	}

	b := Flag(Bool, true)
	if b.Kind != KindBool || !b.Bool() {
		t.Fatalf("unexpected bool value: %+v", b)
	}

	r := Builtin()
	if !v.Satisfies(r, Summary) {
		t.Fatal("Narrative value must satisfy Summary")
	}
	if v.Satisfies(r, Transcript) {
		t.Fatal("Narrative value must not satisfy Transcript")
	}
}
