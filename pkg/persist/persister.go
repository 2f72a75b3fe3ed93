package persist

// Persister handles I/O for a specific state type using a Codec.
type Persister[T any] struct {
	codec Codec
}

// NewPersister creates a persister with the given codec.
func NewPersister[T any](codec Codec) *Persister[T] {
	return &Persister[T]{codec: codec}
}

// Codec returns the persister's codec.
func (p *Persister[T]) Codec() Codec {
	return p.codec
}

// Path returns the file a state with the given basename lives in.
func (p *Persister[T]) Path(dir, basename string) string {
	return StatePath(dir, basename, p.codec)
}

// Save writes state to dir/basename.
func (p *Persister[T]) Save(dir, basename string, state *T) error {
	return SaveState(dir, basename, p.codec, state)
}

// Load restores state from dir/basename.
func (p *Persister[T]) Load(dir, basename string) (*T, error) {
	var state T

	err := LoadState(dir, basename, p.codec, &state)
	if err != nil {
		return nil, err
	}

	return &state, nil
}
