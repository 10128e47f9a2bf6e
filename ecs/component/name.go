package component

// Name is a human-readable entity label, used for lookups like the
// PlayerSpawn anchor and for log output.
type Name struct {
	Value string
}

var NameComponent = NewComponent[Name]()
