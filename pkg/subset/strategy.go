package subset

import (
	"fmt"
	"slices"
)

// Strategy is the way a table is handled during extraction.
type Strategy int

const (
	// Generic tables are copied by closure or remainder passes.
	Generic Strategy = iota

	// Root tables hold the initial population selected by the root filter.
	Root

	// SelfReferencing tables have several columns that reference the same
	// parent, so a row can qualify through more than one of them.
	SelfReferencing

	// Bridge tables associate two entities. Rows are copied when the
	// parent is already in the target, then the secondary entity follows.
	Bridge

	// Account tables are discovered by harvesting references from every
	// copied table.
	Account

	// AccountDependent tables belong to accounts and are copied after them.
	AccountDependent
)

var strategyNames = map[Strategy]string{
	Generic:          "generic",
	Root:             "root",
	SelfReferencing:  "self-referencing",
	Bridge:           "bridge",
	Account:          "account",
	AccountDependent: "account-dependent",
}

func (s Strategy) String() string {
	if res, ok := strategyNames[s]; ok {
		return res
	}
	return fmt.Sprintf("strategy(%d)", int(s))
}

// Rule describes how one table is handled.
type Rule struct {
	// Table is the name of the table the rule belongs to.
	Table string

	// Strategy is the handling strategy.
	Strategy Strategy

	// Key is the key column of the table, by convention <table>_id.
	Key string

	// Parent and ParentKey name the entity the table is filtered against.
	Parent    string
	ParentKey string

	// Secondary and SecondaryKey name the entity a bridge table brings
	// along after its own rows are copied.
	Secondary    string
	SecondaryKey string
}

// KeyColumn returns the key column of a table by naming convention.
func KeyColumn(table string) string {
	return table + "_id"
}

// Strategies maps table names to rules. Tables without a rule are
// Generic. Registration order is kept because bridge phases run in the
// order they were registered.
type Strategies struct {
	rules map[string]Rule
	order []string
}

// NewStrategies creates an empty strategy table.
func NewStrategies() *Strategies {
	return &Strategies{rules: make(map[string]Rule)}
}

// DefaultStrategies returns the rules for the OpenMRS schema.
func DefaultStrategies() *Strategies {
	res := NewStrategies()
	_ = res.Register(
		Rule{Table: "person", Strategy: Root, Key: "person_id"},
		Rule{Table: "patient", Strategy: Root, Key: "patient_id"},
		Rule{
			Table:     "relationship",
			Strategy:  SelfReferencing,
			Key:       "relationship_id",
			Parent:    "person",
			ParentKey: "person_id",
		},
		Rule{
			Table:        "encounter_provider",
			Strategy:     Bridge,
			Key:          "encounter_provider_id",
			Parent:       "encounter",
			ParentKey:    "encounter_id",
			Secondary:    "provider",
			SecondaryKey: "provider_id",
		},
		Rule{
			Table:     "patient_state",
			Strategy:  Bridge,
			Key:       "patient_state_id",
			Parent:    "patient_program",
			ParentKey: "patient_program_id",
		},
		Rule{Table: "users", Strategy: Account, Key: "user_id"},
		Rule{
			Table:     "user_property",
			Strategy:  AccountDependent,
			Key:       "user_id",
			Parent:    "users",
			ParentKey: "user_id",
		},
		Rule{
			Table:     "user_role",
			Strategy:  AccountDependent,
			Key:       "user_id",
			Parent:    "users",
			ParentKey: "user_id",
		},
	)
	return res
}

// Register adds rules to the table. A rule for an already registered
// table replaces it and keeps its original position.
func (s *Strategies) Register(rules ...Rule) error {
	for _, r := range rules {
		if err := r.validate(); err != nil {
			return err
		}
		if r.Key == "" {
			r.Key = KeyColumn(r.Table)
		}
		if _, ok := s.rules[r.Table]; !ok {
			s.order = append(s.order, r.Table)
		}
		s.rules[r.Table] = r
	}
	return nil
}

func (r Rule) validate() error {
	if r.Table == "" {
		return fmt.Errorf("rule without table name")
	}
	switch r.Strategy {
	case Generic:
		return fmt.Errorf("table %s: generic tables need no rule", r.Table)
	case SelfReferencing, Bridge, AccountDependent:
		if r.Parent == "" || r.ParentKey == "" {
			return fmt.Errorf("table %s: %s rule needs a parent",
				r.Table, r.Strategy)
		}
	}
	if (r.Secondary == "") != (r.SecondaryKey == "") {
		return fmt.Errorf("table %s: secondary needs both table and key",
			r.Table)
	}
	return nil
}

// Lookup returns the rule of a table. Unregistered tables get a Generic
// rule with the conventional key column.
func (s *Strategies) Lookup(table string) Rule {
	if r, ok := s.rules[table]; ok {
		return r
	}
	return Rule{Table: table, Strategy: Generic, Key: KeyColumn(table)}
}

// Of returns rules with the given strategy in registration order.
func (s *Strategies) Of(st Strategy) []Rule {
	var res []Rule
	for _, v := range s.order {
		if r := s.rules[v]; r.Strategy == st {
			res = append(res, r)
		}
	}
	return res
}

// Tables returns every table owned by a non-generic rule, including
// secondary tables of bridges, in registration order.
func (s *Strategies) Tables() []string {
	res := make([]string, 0, len(s.order))
	for _, v := range s.order {
		for _, t := range []string{v, s.rules[v].Secondary} {
			if t != "" && !slices.Contains(res, t) {
				res = append(res, t)
			}
		}
	}
	return res
}

// TablesOf returns table names with the given strategy.
func (s *Strategies) TablesOf(st Strategy) []string {
	rules := s.Of(st)
	res := make([]string, len(rules))
	for i := range rules {
		res[i] = rules[i].Table
	}
	return res
}
