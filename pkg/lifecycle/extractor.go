package lifecycle

import (
	"context"
)

// Extractor copies a referentially consistent subset of the source
// database into a freshly created target database.
//
// A run goes through fixed phases: structure copy, root copy, closure
// discovery and copy, special cases with backfill, remainder copy,
// account discovery, dump and optional cleanup. Cleanup is attempted
// even when an earlier phase fails.
type Extractor interface {
	// Extract runs all phases. It returns the first unrecovered error.
	Extract(ctx context.Context) error
}

// Dumper exports the target database to a file.
type Dumper interface {
	// Dump writes the dump of a database and returns the file path.
	Dump(ctx context.Context, database string) (string, error)
}
