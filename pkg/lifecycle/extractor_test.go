package lifecycle_test

import (
	"testing"

	"github.com/FriendsInGlobalHealth/fghextractor/internal/iodump"
	"github.com/FriendsInGlobalHealth/fghextractor/internal/ioextract"
	"github.com/FriendsInGlobalHealth/fghextractor/pkg/lifecycle"
	"github.com/stretchr/testify/assert"
)

// TestExtractorContract ensures that ioextract.Extractor satisfies the
// lifecycle.Extractor interface.
func TestExtractorContract(t *testing.T) {
	var _ lifecycle.Extractor = &ioextract.Extractor{}
	assert.True(t, true, "ioextract.Extractor should implement lifecycle.Extractor")
}

// TestDumperContract ensures that iodump.MySQLDumper satisfies the
// lifecycle.Dumper interface.
func TestDumperContract(t *testing.T) {
	var _ lifecycle.Dumper = &iodump.MySQLDumper{}
	assert.True(t, true, "iodump.MySQLDumper should implement lifecycle.Dumper")
}
