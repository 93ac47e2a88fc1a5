// Package factory builds model instances for tests without fixtures.
//
// A Fields map assigns values to struct fields by name. Each value is
// either a scalar, applied to every instance, or a sequence (slice or
// array), contributing one element per instance. All sequence-valued
// fields in one call must share the same length N; scalars are
// broadcast across all N instances. Strings and []byte are always
// treated as scalars even though they are technically iterable.
//
//	users, err := factory.Build[domain.User](factory.Fields{
//		"Username": []string{"john", "tom"},
//		"LastName": []string{"Smith", "Green"},
//		"Email":    "shared@example.com",
//	})
//
// Create and CreateOne additionally persist each instance, in index
// order, through a store.Saver.
package factory

import (
	"context"
	"fmt"
	"reflect"
	"sort"

	"github.com/anvil8/go-test-tools/store"
)

// Fields maps struct field names to scalar or sequence values.
type Fields map[string]any

// Build constructs one instance of T per row of the field
// specification. With no sequence-valued fields it returns exactly one
// instance; otherwise it returns N instances, where N is the common
// length of every sequence-valued field. A length mismatch fails fast
// before any instance is built.
func Build[T any](fields Fields) ([]*T, error) {
	if kind := reflect.TypeOf((*T)(nil)).Elem().Kind(); kind != reflect.Struct {
		return nil, fmt.Errorf("factory: target type %s is not a struct", reflect.TypeOf((*T)(nil)).Elem())
	}

	names := sortedNames(fields)

	n, err := rowCount(fields, names)
	if err != nil {
		return nil, err
	}

	instances := make([]*T, 0, n)
	for i := 0; i < n; i++ {
		instance := new(T)
		for _, name := range names {
			value := fields[name]
			if isSequence(value) {
				value = reflect.ValueOf(value).Index(i).Interface()
			}
			if err := setField(instance, name, value); err != nil {
				return nil, err
			}
		}
		instances = append(instances, instance)
	}

	return instances, nil
}

// BuildOne is Build for the common single-instance case. It fails if
// the field specification would produce anything other than exactly
// one instance.
func BuildOne[T any](fields Fields) (*T, error) {
	instances, err := Build[T](fields)
	if err != nil {
		return nil, err
	}
	if len(instances) != 1 {
		return nil, fmt.Errorf("factory: expected exactly one instance, field specification produced %d", len(instances))
	}
	return instances[0], nil
}

// Create builds instances like Build and saves each one through the
// given saver, in index order. The first failed save aborts the call;
// instances saved before the failure stay saved.
func Create[T any](ctx context.Context, saver store.Saver[*T], fields Fields) ([]*T, error) {
	instances, err := Build[T](fields)
	if err != nil {
		return nil, err
	}
	for i, instance := range instances {
		if err := saver.Save(ctx, instance); err != nil {
			return nil, fmt.Errorf("factory: saving instance %d: %w", i, err)
		}
	}
	return instances, nil
}

// CreateOne is Create for the single-instance case.
func CreateOne[T any](ctx context.Context, saver store.Saver[*T], fields Fields) (*T, error) {
	instance, err := BuildOne[T](fields)
	if err != nil {
		return nil, err
	}
	if err := saver.Save(ctx, instance); err != nil {
		return nil, fmt.Errorf("factory: saving instance: %w", err)
	}
	return instance, nil
}

// rowCount returns how many instances the specification describes and
// validates that all sequence-valued fields agree on that count.
func rowCount(fields Fields, names []string) (int, error) {
	count := -1
	first := ""
	for _, name := range names {
		value := fields[name]
		if !isSequence(value) {
			continue
		}
		length := reflect.ValueOf(value).Len()
		if count == -1 {
			count, first = length, name
			continue
		}
		if length != count {
			return 0, fmt.Errorf("factory: sequence field %q has length %d, but field %q has length %d",
				name, length, first, count)
		}
	}
	if count == -1 {
		return 1, nil
	}
	return count, nil
}

// isSequence reports whether the value contributes one element per
// instance. Strings and []byte are atomic scalars.
func isSequence(value any) bool {
	if value == nil {
		return false
	}
	t := reflect.TypeOf(value)
	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		return t.Elem().Kind() != reflect.Uint8
	default:
		return false
	}
}

// setField assigns value to the named field of the struct pointed to
// by instance. Unknown fields and unassignable values surface as
// descriptive errors, the same way an entity constructor would reject
// them.
func setField(instance any, name string, value any) error {
	target := reflect.ValueOf(instance).Elem()
	field := target.FieldByName(name)
	if !field.IsValid() {
		return fmt.Errorf("factory: type %s has no field %q", target.Type(), name)
	}
	if !field.CanSet() {
		return fmt.Errorf("factory: field %s.%s is not settable", target.Type(), name)
	}

	if value == nil {
		field.Set(reflect.Zero(field.Type()))
		return nil
	}

	v := reflect.ValueOf(value)
	switch {
	case v.Type().AssignableTo(field.Type()):
		field.Set(v)
	case isNumeric(v.Kind()) && isNumeric(field.Kind()) && v.Type().ConvertibleTo(field.Type()):
		field.Set(v.Convert(field.Type()))
	default:
		return fmt.Errorf("factory: cannot assign %s to field %s.%s (%s)",
			v.Type(), target.Type(), name, field.Type())
	}

	return nil
}

func isNumeric(kind reflect.Kind) bool {
	switch kind {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

// sortedNames keeps iteration order stable so repeated calls build and
// save instances deterministically and error messages are repeatable.
func sortedNames(fields Fields) []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
