// Package plan turns wildcard matches into a batch of move actions, checks
// the batch for conflicts and orders it into a sequence of single moves that
// never overwrites data another move of the same batch still needs.
package plan

// Action is a single move of Source to Destination. Both paths are absolute
// and cleaned.
type Action struct {
	Source      string
	Destination string

	// Temporary marks the two steps which route a cycle through a
	// temporary path.
	Temporary bool
}

// String returns the action as "source --> destination".
func (a Action) String() string {
	return a.Source + " --> " + a.Destination
}
