package extras

import (
	"encoding/json"
	"fmt"
	"image/color"
)

// Extras is the raw per-node metadata blob. Nil means the field is absent.
type Extras struct {
	RigidBody  *string
	Collider   *string
	DebugColor *string
}

// Empty reports whether no known field is set.
func (e Extras) Empty() bool {
	return e.RigidBody == nil && e.Collider == nil && e.DebugColor == nil
}

// FromAny builds Extras from a decoded glTF extras value: nil, a JSON object
// (map[string]any) or a JSON document held in a string. Unknown keys are
// ignored; non-string values of known keys are kept in their printed form so
// they fail later as a ParseError instead of vanishing.
func FromAny(v any) (Extras, error) {
	switch raw := v.(type) {
	case nil:
		return Extras{}, nil
	case Extras:
		return raw, nil
	case map[string]any:
		return fromMap(raw), nil
	case string:
		if raw == "" {
			return Extras{}, nil
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			return Extras{}, fmt.Errorf("extras: decode json: %w", err)
		}
		return fromMap(m), nil
	case json.RawMessage:
		return FromAny(string(raw))
	default:
		return Extras{}, fmt.Errorf("extras: unsupported extras type %T", v)
	}
}

func fromMap(m map[string]any) Extras {
	return Extras{
		RigidBody:  field(m, FieldRigidBody),
		Collider:   field(m, FieldCollider),
		DebugColor: field(m, FieldDebugColor),
	}
}

func field(m map[string]any, key string) *string {
	v, ok := m[key]
	if !ok || v == nil {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		s = fmt.Sprint(v)
	}
	return &s
}

// Field is one decoded descriptor: absent, parsed, or failed.
type Field[T any] struct {
	Present bool
	Value   T
	Err     error
}

func (f Field[T]) OK() bool {
	return f.Present && f.Err == nil
}

// Descriptor is the typed form of Extras.
type Descriptor struct {
	RigidBody  Field[RigidBodyKind]
	Collider   Field[ColliderKind]
	DebugColor Field[color.NRGBA]
}

// Decode parses every present field independently; a failure in one field
// does not affect the others.
func (e Extras) Decode() Descriptor {
	var d Descriptor
	if e.RigidBody != nil {
		k, err := ParseRigidBody(*e.RigidBody)
		d.RigidBody = Field[RigidBodyKind]{Present: true, Value: k, Err: err}
	}
	if e.Collider != nil {
		k, err := ParseCollider(*e.Collider)
		d.Collider = Field[ColliderKind]{Present: true, Value: k, Err: err}
	}
	if e.DebugColor != nil {
		c, err := ParseColor(*e.DebugColor)
		d.DebugColor = Field[color.NRGBA]{Present: true, Value: c, Err: err}
	}
	return d
}
