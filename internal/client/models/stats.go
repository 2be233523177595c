package models

// ImportStats summarises one import run.
type ImportStats struct {
	TotalProcessed int
	NewRecords     int
	UpdatedRecords int
	Skipped        int
	Errors         []string
}

// HasWrites reports whether the run changed the remote collection.
func (s *ImportStats) HasWrites() bool {
	return s.NewRecords+s.UpdatedRecords > 0
}

// ProgressKind distinguishes record-level from chunk-level progress events.
type ProgressKind int

const (
	ProgressRecord ProgressKind = iota
	ProgressChunk
)

// Progress is reported while an import runs.
type Progress struct {
	Kind       ProgressKind
	Current    int
	Total      int
	Percentage int
	Chunk      int
	ChunkCount int
}

// DuplicateCheckResult partitions import candidates against existing keys.
type DuplicateCheckResult struct {
	NewItems       []Supply
	DuplicateItems []Supply
}
