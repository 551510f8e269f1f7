package ioschema

import (
	"os"

	"github.com/FriendsInGlobalHealth/fghextractor/pkg/schema"
	"gopkg.in/yaml.v3"
)

// LoadDeclared reads a declared foreign key graph from a YAML file:
//
//	tables: [person, patient, obs]
//	foreign_keys:
//	  - table: patient
//	    column: patient_id
//	    references: person
//	    referenced_column: person_id
func LoadDeclared(path string) (*schema.Declared, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, DeclaredReadError(path, err)
	}

	var res schema.Declared
	if err := yaml.Unmarshal(data, &res); err != nil {
		return nil, DeclaredReadError(path, err)
	}

	if err := res.Validate(); err != nil {
		return nil, DeclaredReadError(path, err)
	}

	return &res, nil
}
