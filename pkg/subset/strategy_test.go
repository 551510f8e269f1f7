package subset_test

import (
	"testing"

	"github.com/FriendsInGlobalHealth/fghextractor/pkg/subset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultStrategies(t *testing.T) {
	s := subset.DefaultStrategies()

	tests := []struct {
		table    string
		strategy subset.Strategy
		key      string
	}{
		{"person", subset.Root, "person_id"},
		{"patient", subset.Root, "patient_id"},
		{"relationship", subset.SelfReferencing, "relationship_id"},
		{"encounter_provider", subset.Bridge, "encounter_provider_id"},
		{"patient_state", subset.Bridge, "patient_state_id"},
		{"users", subset.Account, "user_id"},
		{"user_property", subset.AccountDependent, "user_id"},
		{"user_role", subset.AccountDependent, "user_id"},
		{"obs", subset.Generic, "obs_id"},
	}

	for _, v := range tests {
		t.Run(v.table, func(t *testing.T) {
			r := s.Lookup(v.table)
			assert.Equal(t, v.table, r.Table)
			assert.Equal(t, v.strategy, r.Strategy)
			assert.Equal(t, v.key, r.Key)
		})
	}

	assert.Equal(t, []string{"person", "patient"}, s.TablesOf(subset.Root))
	bridges := s.Of(subset.Bridge)
	require.Len(t, bridges, 2)
	assert.Equal(t, "encounter_provider", bridges[0].Table)
	assert.Equal(t, "provider", bridges[0].Secondary)
	assert.Equal(t, "patient_state", bridges[1].Table)

	assert.Equal(t, []string{
		"person", "patient", "relationship", "encounter_provider",
		"provider", "patient_state", "users", "user_property", "user_role",
	}, s.Tables())
}

func TestRegister(t *testing.T) {
	s := subset.NewStrategies()
	err := s.Register(
		subset.Rule{Table: "member", Strategy: subset.Root},
		subset.Rule{
			Table:     "member_link",
			Strategy:  subset.SelfReferencing,
			Parent:    "member",
			ParentKey: "member_id",
		},
	)
	require.NoError(t, err)
	assert.Equal(t, "member_id", s.Lookup("member").Key)
	assert.Equal(t, "member_link_id", s.Lookup("member_link").Key)

	err = s.Register(subset.Rule{
		Table: "member", Strategy: subset.Account, Key: "member_id",
	})
	require.NoError(t, err)
	assert.Equal(t, subset.Account, s.Lookup("member").Strategy)
	assert.Equal(t, []string{"member", "member_link"}, s.Tables(),
		"re-registration keeps position")

	bad := []subset.Rule{
		{Strategy: subset.Root},
		{Table: "x", Strategy: subset.Generic},
		{Table: "x", Strategy: subset.Bridge},
		{Table: "x", Strategy: subset.Root, Secondary: "y"},
	}
	for _, v := range bad {
		assert.Error(t, s.Register(v))
	}
}

func TestStrategyString(t *testing.T) {
	assert.Equal(t, "self-referencing", subset.SelfReferencing.String())
	assert.Equal(t, "strategy(42)", subset.Strategy(42).String())
}
