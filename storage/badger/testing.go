package badger

// NewMemoryBackend opens an in-memory backend. Intended for tests and for
// throwaway interactive sessions; everything is lost on Close.
func NewMemoryBackend() (*Backend, error) {
	return OpenBackend("", true)
}
