package index

// EntryIndex defines the interface for entry indexing operations.
// Consumers should depend on this interface rather than the concrete *DB
// type to facilitate testing with mocks.
type EntryIndex interface {
	UpsertEntry(e EntryRow, body string, detailRefs []string) error
	DeleteEntry(path string) error
	GetChecksum(path string) (string, error)
	GetEntry(path string) (*EntryRow, error)
	ListDay(dayKey int) ([]EntryRow, error)
	CountsByDay(startKey, endKey int) (map[int]int, error)
	EntriesForDetail(itemID string) ([]string, error)
	Search(query string, limit int) ([]SearchResult, error)
	AllPaths() (map[string]struct{}, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

// Verify *DB satisfies EntryIndex at compile time.
var _ EntryIndex = (*DB)(nil)
