package cmd

import (
	"bytes"
	"testing"

	"github.com/FriendsInGlobalHealth/fghextractor/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGetReferencesCmd_Exists verifies getReferencesCmd returns
// a valid command.
func TestGetReferencesCmd_Exists(t *testing.T) {
	cmd := getReferencesCmd()
	require.NotNil(t, cmd)
	assert.Equal(t, "references", cmd.Name())
	assert.NotNil(t, cmd.RunE)

	for _, v := range []string{"url", "key", "schema", "exclude"} {
		assert.NotNil(t, cmd.Flags().Lookup(v), "--%s flag should exist", v)
	}
}

// TestGetReferencesCmd_Args verifies that exactly one table is required.
func TestGetReferencesCmd_Args(t *testing.T) {
	cmd := getReferencesCmd()
	assert.Error(t, cmd.Args(cmd, nil))
	assert.Error(t, cmd.Args(cmd, []string{"person", "patient"}))
	assert.NoError(t, cmd.Args(cmd, []string{"person"}))
}

func TestPrintReferences(t *testing.T) {
	refs := schema.NewReferences(
		schema.TableReference{Table: "patient", Column: "patient_id"},
		schema.TableReference{Table: "obs", Column: "person_id"},
		schema.TableReference{Table: "relationship", Column: "person_b"},
		schema.TableReference{Table: "relationship", Column: "person_a"},
	)

	buf := new(bytes.Buffer)
	printReferences(buf, refs)
	assert.Equal(t,
		"obs.person_id\npatient.patient_id\n"+
			"relationship.person_a\nrelationship.person_b\n",
		buf.String())
}
