package storage

// StorageInterface is the whole-file contract the pipeline reads and writes
// its snapshots through. Store replaces the file as a unit; a reader never
// observes a partial write.
type StorageInterface interface {
	Store(filename string, data []byte) error
	Retrieve(filename string) ([]byte, error)
}
