package db_test

import (
	"testing"

	"github.com/FriendsInGlobalHealth/fghextractor/internal/iodb"
	"github.com/FriendsInGlobalHealth/fghextractor/pkg/db"
)

// TestMySQLOperatorImplementsInterface verifies at compile time that the
// MySQL operator implements db.Operator.
func TestMySQLOperatorImplementsInterface(t *testing.T) {
	var _ db.Operator = iodb.NewMySQLOperator()
}
