package extras

import (
	"errors"
	"fmt"
	"image/color"
	"sort"
	"strings"

	"github.com/mazznoer/csscolorparser"
)

const (
	FieldRigidBody  = "rigid_body"
	FieldCollider   = "collider"
	FieldDebugColor = "debug_color"
)

var (
	ErrUnknownVariant = errors.New("unknown variant")
	ErrEmptyValue     = errors.New("empty value")
)

// ParseError is returned for a present field that does not decode.
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("extras: field %s: value %q: %v", e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseRigidBody decodes a rigid-body kind. Names are case-sensitive.
func ParseRigidBody(s string) (RigidBodyKind, error) {
	if s == "" {
		return 0, &ParseError{Field: FieldRigidBody, Value: s, Err: ErrEmptyValue}
	}
	if k, ok := rigidBodyNames[s]; ok {
		return k, nil
	}
	return 0, &ParseError{Field: FieldRigidBody, Value: s, Err: unknownVariant(rigidBodyNames)}
}

// ParseCollider decodes a collider kind. Names are case-sensitive.
func ParseCollider(s string) (ColliderKind, error) {
	if s == "" {
		return 0, &ParseError{Field: FieldCollider, Value: s, Err: ErrEmptyValue}
	}
	if k, ok := colliderNames[s]; ok {
		return k, nil
	}
	return 0, &ParseError{Field: FieldCollider, Value: s, Err: unknownVariant(colliderNames)}
}

// ParseColor decodes any CSS colour string: hex, named, rgb(), hsl() and
// friends.
func ParseColor(s string) (color.NRGBA, error) {
	if strings.TrimSpace(s) == "" {
		return color.NRGBA{}, &ParseError{Field: FieldDebugColor, Value: s, Err: ErrEmptyValue}
	}
	c, err := csscolorparser.Parse(s)
	if err != nil {
		return color.NRGBA{}, &ParseError{Field: FieldDebugColor, Value: s, Err: err}
	}
	r, g, b, a := c.RGBA255()
	return color.NRGBA{R: r, G: g, B: b, A: a}, nil
}

func unknownVariant[K any](names map[string]K) error {
	keys := make([]string, 0, len(names))
	for k := range names {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Errorf("%w, expected one of %s", ErrUnknownVariant, strings.Join(keys, ", "))
}
