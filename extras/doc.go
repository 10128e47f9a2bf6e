// Package extras decodes the loosely typed metadata that the content
// pipeline attaches to scene nodes (glTF "extras") into typed physics
// descriptors.
//
// Authoring stays permissive: every field is optional and nothing is
// validated at export time. Decoding is strict: a present field either
// yields a known kind or a *ParseError naming the field and the offending
// value.
package extras
