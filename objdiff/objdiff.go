// Package objdiff builds readable failure messages when a test's
// expected list of model objects does not match what the store
// returned. Objects are matched by identity (ObjectID), compared
// either as a set or in order, and rendered with a configurable set of
// tracked fields so the failure output stays small.
package objdiff

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/google/go-cmp/cmp"
)

// Identifiable is anything carrying a stable identity for matching
// expected objects against actual ones.
type Identifiable interface {
	ObjectID() string
}

// List holds the expected objects of a test along with the field names
// worth showing when the comparison fails.
type List[T Identifiable] struct {
	Objects []T
	Fields  []string
}

// NewList builds a List tracking the given fields.
func NewList[T Identifiable](fields []string, objects ...T) *List[T] {
	return &List[T]{Objects: objects, Fields: fields}
}

// HasDiff reports whether actual differs from the expected objects.
// With ordered set, identity order matters; otherwise the two are
// compared as multisets of IDs.
func (l *List[T]) HasDiff(actual []T, ordered bool) bool {
	expected := ids(l.Objects)
	got := ids(actual)
	if len(expected) != len(got) {
		return true
	}
	if ordered {
		return !slices.Equal(expected, got)
	}
	return !sameIDSet(expected, got)
}

// Diff returns a human-readable description of how actual differs from
// the expected objects, or the empty string when they match.
func (l *List[T]) Diff(actual []T, ordered bool) string {
	expectedIDs := ids(l.Objects)
	actualIDs := ids(actual)

	if len(expectedIDs) != len(actualIDs) {
		return fmt.Sprintf("expected %d objects but got %d\n%s",
			len(l.Objects), len(actual), l.membershipDiff(actual))
	}

	if ordered && !slices.Equal(expectedIDs, actualIDs) && sameIDSet(expectedIDs, actualIDs) {
		return fmt.Sprintf("wrong ID order\nExpect: %s\nGot:    %s",
			strings.Join(expectedIDs, " "), strings.Join(actualIDs, " "))
	}

	if detail := l.membershipDiff(actual); detail != "" {
		return "expected and actual objects are different\n" + detail
	}

	if detail := l.fieldDiff(actual); detail != "" {
		return "objects match by ID but tracked fields differ\n" + detail
	}

	return ""
}

// membershipDiff renders the objects present on only one side.
func (l *List[T]) membershipDiff(actual []T) string {
	actualByID := byID(actual)
	expectedByID := byID(l.Objects)

	var missing, extra []string
	for _, obj := range l.Objects {
		if _, ok := actualByID[obj.ObjectID()]; !ok {
			missing = append(missing, l.render(obj))
		}
	}
	for _, obj := range actual {
		if _, ok := expectedByID[obj.ObjectID()]; !ok {
			extra = append(extra, l.render(obj))
		}
	}

	var parts []string
	if len(missing) > 0 {
		parts = append(parts, "Missing objects:\n"+strings.Join(missing, "\n"))
	}
	if len(extra) > 0 {
		parts = append(parts, "Extra objects:\n"+strings.Join(extra, "\n"))
	}
	return strings.Join(parts, "\n\n")
}

// fieldDiff compares tracked fields of objects present on both sides.
func (l *List[T]) fieldDiff(actual []T) string {
	actualByID := byID(actual)

	var parts []string
	for _, obj := range l.Objects {
		other, ok := actualByID[obj.ObjectID()]
		if !ok {
			continue
		}
		if d := cmp.Diff(l.fieldValues(obj), l.fieldValues(other)); d != "" {
			parts = append(parts, fmt.Sprintf("object %s (-expected +actual):\n%s", obj.ObjectID(), d))
		}
	}
	return strings.Join(parts, "\n")
}

// render formats an object as Type(field=value, ...) over the tracked
// fields.
func (l *List[T]) render(obj T) string {
	v := reflect.Indirect(reflect.ValueOf(obj))

	pairs := make([]string, 0, len(l.Fields))
	for _, name := range l.Fields {
		field := v.FieldByName(name)
		if !field.IsValid() {
			pairs = append(pairs, fmt.Sprintf("%s=<no such field>", name))
			continue
		}
		pairs = append(pairs, fmt.Sprintf("%s=%v", name, field.Interface()))
	}
	return fmt.Sprintf("%s(%s)", v.Type().Name(), strings.Join(pairs, ", "))
}

func (l *List[T]) fieldValues(obj T) map[string]any {
	v := reflect.Indirect(reflect.ValueOf(obj))
	values := make(map[string]any, len(l.Fields))
	for _, name := range l.Fields {
		field := v.FieldByName(name)
		if !field.IsValid() {
			continue
		}
		values[name] = field.Interface()
	}
	return values
}

func ids[T Identifiable](objects []T) []string {
	out := make([]string, 0, len(objects))
	for _, obj := range objects {
		out = append(out, obj.ObjectID())
	}
	return out
}

func byID[T Identifiable](objects []T) map[string]T {
	out := make(map[string]T, len(objects))
	for _, obj := range objects {
		out[obj.ObjectID()] = obj
	}
	return out
}

// sameIDSet compares two ID lists as multisets.
func sameIDSet(a, b []string) bool {
	counts := make(map[string]int, len(a))
	for _, id := range a {
		counts[id]++
	}
	for _, id := range b {
		counts[id]--
		if counts[id] < 0 {
			return false
		}
	}
	return true
}
