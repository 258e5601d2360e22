package ports

import (
	"gosift/domain/table"
)

// Loader reads a tabular dataset from disk. Implementations fail with a
// descriptive error when the parsed result is empty.
type Loader interface {
	Load(path string) (*table.Table, error)
}
