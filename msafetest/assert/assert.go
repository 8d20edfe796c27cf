/*
Package assert provides the small set of test helpers shared by msafe
packages. Failures are reported with %+v so that wrapped errors print their
stack trace.
*/
package assert

import (
	"encoding/hex"
	"reflect"
	"testing"

	"github.com/momentum-safe/msafe/errors"
)

// Tester is the part of testing.TB the value assertions rely on.
type Tester interface {
	Helper()
	Fatal(...interface{})
	Fatalf(string, ...interface{})
}

// Nil fails the test unless value is nil or a typed nil.
func Nil(t Tester, value interface{}) {
	t.Helper()
	if !isNil(value) {
		t.Fatalf("want a nil value, got %+v", value)
	}
}

func isNil(value interface{}) bool {
	if value == nil {
		return true
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Ptr, reflect.Slice:
		return v.IsNil()
	}
	return false
}

// Equal fails the test unless want and got are deeply equal.
func Equal(t Tester, want, got interface{}) {
	t.Helper()
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("values not equal\nwant %T %v\n got %T %v", want, want, got, got)
	}
}

// HexEqual compares got with a hex encoded expectation. Encoder tests read
// better this way than with byte slice literals.
func HexEqual(t Tester, want string, got []byte) {
	t.Helper()
	if h := hex.EncodeToString(got); h != want {
		t.Fatalf("bytes not equal\nwant %s\n got %s", want, h)
	}
}

// Panics fails the test if fn returns without panicking.
func Panics(t Tester, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatal("panic expected")
		}
	}()
	fn()
}

// FieldError checks the validation errors reported for a single field.
// Exactly one error of kind want must be present. A nil want requires that
// the field has no errors at all.
func FieldError(t testing.TB, err error, fieldName string, want *errors.Error) {
	t.Helper()

	errs := errors.FieldErrors(err, fieldName)
	switch {
	case want == nil && len(errs) == 0:
		return
	case want == nil:
		logAll(t, errs)
		t.Fatalf("field %s: want no error, got %d", fieldName, len(errs))
	case len(errs) == 0:
		t.Fatalf("field %s: no error found in %+v", fieldName, err)
	case len(errs) > 1:
		logAll(t, errs)
		t.Fatalf("field %s: want one error, got %d", fieldName, len(errs))
	case !want.Is(errs[0]):
		t.Fatalf("field %s: want %q, got %+v", fieldName, want, errs[0])
	}
}

func logAll(t testing.TB, errs []error) {
	t.Helper()
	for i, e := range errs {
		t.Logf("\terror %d: %q", i+1, e)
	}
}

// IsErr fails the test unless got is of the same kind as want. Two nil
// values match.
func IsErr(t testing.TB, want, got error) {
	t.Helper()
	if want == got {
		return
	}
	if kind, ok := want.(interface{ Is(error) bool }); ok && kind.Is(got) {
		return
	}
	t.Fatalf("want %q, got %+v", want, got)
}
