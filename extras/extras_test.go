package extras

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestParseRigidBody(t *testing.T) {
	tests := []struct {
		in   string
		want RigidBodyKind
		ok   bool
	}{
		{"Static", RigidBodyStatic, true},
		{"Dynamic", RigidBodyDynamic, true},
		{"Kinematic", RigidBodyKinematicPosition, true},
		{"KinematicPositionBased", RigidBodyKinematicPosition, true},
		{"KinematicVelocityBased", RigidBodyKinematicVelocity, true},
		{"dynamic", 0, false},
		{"Bouncy", 0, false},
		{"", 0, false},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseRigidBody(tc.in)
			if !tc.ok {
				var pe *ParseError
				require.ErrorAs(t, err, &pe)
				assert.Equal(t, FieldRigidBody, pe.Field)
				assert.Equal(t, tc.in, pe.Value)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseColliderIsPure(t *testing.T) {
	for i := 0; i < 3; i++ {
		k, err := ParseCollider("Sensor")
		require.NoError(t, err)
		assert.Equal(t, ColliderSensor, k)

		_, err = ParseCollider("Trimesh")
		require.ErrorIs(t, err, ErrUnknownVariant)
		assert.EqualError(t, err, `extras: field collider: value "Trimesh": unknown variant, expected one of Sensor, Solid`)
	}
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#ff8000")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 255, G: 128, B: 0, A: 255}, c)

	c, err = ParseColor("orange")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 255, G: 165, B: 0, A: 255}, c)

	_, err = ParseColor("not-a-colour")
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, FieldDebugColor, pe.Field)

	_, err = ParseColor("  ")
	assert.ErrorIs(t, err, ErrEmptyValue)
}

func TestFromAny(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		want    Extras
		wantErr bool
	}{
		{name: "nil", in: nil, want: Extras{}},
		{
			name: "object",
			in:   map[string]any{"rigid_body": "Static", "collider": "Solid", "author": "bob"},
			want: Extras{RigidBody: strPtr("Static"), Collider: strPtr("Solid")},
		},
		{
			name: "json_string",
			in:   `{"debug_color":"#00ff00"}`,
			want: Extras{DebugColor: strPtr("#00ff00")},
		},
		{
			name: "non_string_value_kept_printed",
			in:   map[string]any{"collider": float64(3)},
			want: Extras{Collider: strPtr("3")},
		},
		{name: "bad_json", in: `{"collider":`, wantErr: true},
		{name: "unsupported", in: 42, wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := FromAny(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDecodeIsolatesFields(t *testing.T) {
	d := Extras{
		RigidBody:  strPtr("Wobbly"),
		Collider:   strPtr("Solid"),
		DebugColor: nil,
	}.Decode()

	assert.True(t, d.RigidBody.Present)
	assert.False(t, d.RigidBody.OK())
	assert.Error(t, d.RigidBody.Err)

	assert.True(t, d.Collider.OK())
	assert.Equal(t, ColliderSolid, d.Collider.Value)

	assert.False(t, d.DebugColor.Present)
	assert.NoError(t, d.DebugColor.Err)
	assert.True(t, Extras{}.Empty())
}
