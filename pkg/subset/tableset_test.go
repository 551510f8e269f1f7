package subset_test

import (
	"testing"

	"github.com/FriendsInGlobalHealth/fghextractor/pkg/subset"
	"github.com/stretchr/testify/assert"
)

func TestNewTableSet(t *testing.T) {
	all := []string{"obs", "person", "encounter", "audit_log", "obs", ""}
	ts := subset.NewTableSet(all, "person", "audit_log")

	assert.Equal(t, 2, ts.Len())
	assert.Equal(t, []string{"encounter", "obs"}, ts.Names())
	assert.True(t, ts.Has("obs"))
	assert.False(t, ts.Has("person"))
	assert.False(t, ts.Has("audit_log"))
}

func TestTableSetClaim(t *testing.T) {
	ts := subset.NewTableSet([]string{"a", "b", "c", "d"})

	claimed, rest := ts.Claim("c", "x", "a", "c")
	assert.Equal(t, []string{"c", "a"}, claimed)
	assert.Equal(t, []string{"b", "d"}, rest.Names())
	assert.Equal(t, 4, ts.Len(), "claim does not modify the original set")

	claimed, again := rest.Claim("a")
	assert.Nil(t, claimed, "a table can be claimed only once")
	assert.Equal(t, rest.Names(), again.Names())

	all, empty := rest.ClaimAll()
	assert.Equal(t, []string{"b", "d"}, all)
	assert.Equal(t, 0, empty.Len())
}

func TestTableSetNamesIsCopy(t *testing.T) {
	ts := subset.NewTableSet([]string{"a", "b"})
	names := ts.Names()
	names[0] = "z"
	assert.True(t, ts.Has("a"))
}
