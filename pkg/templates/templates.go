// Package templates provides embedded templates of files that are
// generated in the config directory on the first run.
package templates

import _ "embed"

// ConfigYAML contains the default config.yaml template for application configuration.
//
//go:embed config.yaml
var ConfigYAML string

// PatientsSQL contains the default patient query. It selects patients
// that had a non-voided encounter at one of the locations before the end
// date.
//
//go:embed patients.sql
var PatientsSQL string
