package iotesting

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// FixtureRootQuery selects patients that had an encounter at one of the
// locations before the end date. It is the test counterpart of the
// default patient query file.
const FixtureRootQuery = `SELECT DISTINCT e.patient_id
FROM sourceDatabase.encounter e
WHERE e.location_id IN (:locations)
  AND e.encounter_datetime <= :endDate
  AND e.voided = 0`

// fixtureSchema is a reduced OpenMRS schema. Every foreign key that the
// extraction relies on is declared, so live introspection finds the same
// graph as on a production database.
var fixtureSchema = []string{
	`CREATE TABLE users (
		user_id int NOT NULL PRIMARY KEY,
		person_id int NOT NULL,
		creator int NULL,
		username varchar(50) NOT NULL
	)`,
	`CREATE TABLE person (
		person_id int NOT NULL PRIMARY KEY,
		gender varchar(1) NOT NULL,
		creator int NULL
	)`,
	`CREATE TABLE patient (
		patient_id int NOT NULL PRIMARY KEY,
		creator int NULL
	)`,
	`CREATE TABLE person_name (
		person_name_id int NOT NULL PRIMARY KEY,
		person_id int NOT NULL,
		given_name varchar(50) NOT NULL
	)`,
	`CREATE TABLE relationship (
		relationship_id int NOT NULL PRIMARY KEY,
		person_a int NOT NULL,
		person_b int NOT NULL
	)`,
	`CREATE TABLE person_merge_log (
		person_merge_log_id int NOT NULL PRIMARY KEY,
		winner_person_id int NOT NULL,
		loser_person_id int NOT NULL
	)`,
	`CREATE TABLE location (
		location_id int NOT NULL PRIMARY KEY,
		name varchar(50) NOT NULL,
		parent_location int NULL
	)`,
	`CREATE TABLE encounter (
		encounter_id int NOT NULL PRIMARY KEY,
		patient_id int NOT NULL,
		location_id int NULL,
		encounter_datetime date NOT NULL,
		voided tinyint NOT NULL DEFAULT 0,
		creator int NULL
	)`,
	`CREATE TABLE obs (
		obs_id int NOT NULL PRIMARY KEY,
		person_id int NOT NULL,
		encounter_id int NULL,
		location_id int NULL,
		creator int NULL
	)`,
	`CREATE TABLE provider (
		provider_id int NOT NULL PRIMARY KEY,
		person_id int NULL
	)`,
	`CREATE TABLE encounter_provider (
		encounter_provider_id int NOT NULL PRIMARY KEY,
		encounter_id int NOT NULL,
		provider_id int NOT NULL
	)`,
	`CREATE TABLE patient_program (
		patient_program_id int NOT NULL PRIMARY KEY,
		patient_id int NOT NULL
	)`,
	`CREATE TABLE patient_state (
		patient_state_id int NOT NULL PRIMARY KEY,
		patient_program_id int NOT NULL
	)`,
	`CREATE TABLE user_property (
		user_id int NOT NULL,
		property varchar(50) NOT NULL,
		PRIMARY KEY (user_id, property)
	)`,
	`CREATE TABLE user_role (
		user_id int NOT NULL,
		role varchar(50) NOT NULL,
		PRIMARY KEY (user_id, role)
	)`,
	`CREATE TABLE concept (
		concept_id int NOT NULL PRIMARY KEY,
		name varchar(50) NOT NULL
	)`,
	`CREATE TABLE audit_log (
		audit_log_id int NOT NULL PRIMARY KEY,
		person_id int NOT NULL
	)`,
	`CREATE TABLE global_property (
		property varchar(50) NOT NULL PRIMARY KEY,
		property_value varchar(50) NULL
	)`,
	`CREATE VIEW patient_names AS
		SELECT p.patient_id, n.given_name
		FROM patient p JOIN person_name n ON n.person_id = p.patient_id`,
}

var fixtureKeys = []string{
	"users(person_id) person(person_id)",
	"users(creator) users(user_id)",
	"person(creator) users(user_id)",
	"patient(patient_id) person(person_id)",
	"patient(creator) users(user_id)",
	"person_name(person_id) person(person_id)",
	"relationship(person_a) person(person_id)",
	"relationship(person_b) person(person_id)",
	"person_merge_log(winner_person_id) person(person_id)",
	"person_merge_log(loser_person_id) person(person_id)",
	"location(parent_location) location(location_id)",
	"encounter(patient_id) patient(patient_id)",
	"encounter(location_id) location(location_id)",
	"encounter(creator) users(user_id)",
	"obs(person_id) person(person_id)",
	"obs(encounter_id) encounter(encounter_id)",
	"obs(location_id) location(location_id)",
	"obs(creator) users(user_id)",
	"provider(person_id) person(person_id)",
	"encounter_provider(encounter_id) encounter(encounter_id)",
	"encounter_provider(provider_id) provider(provider_id)",
	"patient_program(patient_id) patient(patient_id)",
	"patient_state(patient_program_id) patient_program(patient_program_id)",
	"user_property(user_id) users(user_id)",
	"user_role(user_id) users(user_id)",
	"audit_log(person_id) person(person_id)",
}

// fixtureData describes the population:
//   - persons 1..10, patients 2, 4 and 6;
//   - patients 2 and 4 were seen at location 5, patient 6 at location 3;
//   - relationship 1 links 4 to 7, relationship 2 links 8 and 9,
//     relationship 3 links the two root patients 2 and 4;
//   - person 2 won a merge with person 10, who is neither a patient nor
//     related to anyone;
//   - user 1 belongs to person 2 and created every clinical row,
//     user 2 belongs to person 8 and created rows of person 8 only.
var fixtureData = []string{
	`INSERT INTO person (person_id, gender, creator) VALUES
		(1,'F',1),(2,'M',1),(3,'F',1),(4,'F',1),(5,'M',1),
		(6,'M',1),(7,'F',1),(8,'M',2),(9,'F',2),(10,'M',1)`,
	`INSERT INTO users (user_id, person_id, creator, username) VALUES
		(1,2,NULL,'admin'),(2,8,1,'clerk')`,
	`INSERT INTO patient (patient_id, creator) VALUES (2,1),(4,1),(6,1)`,
	`INSERT INTO person_name (person_name_id, person_id, given_name) VALUES
		(1,1,'Ana'),(2,2,'Bruno'),(3,3,'Carla'),(4,4,'Dora'),(5,5,'Elio'),
		(6,6,'Fabio'),(7,7,'Gina'),(8,8,'Hugo'),(9,9,'Iris'),(10,10,'Joao')`,
	`INSERT INTO relationship (relationship_id, person_a, person_b) VALUES
		(1,4,7),(2,8,9),(3,2,4)`,
	`INSERT INTO person_merge_log (person_merge_log_id, winner_person_id,
		loser_person_id) VALUES (1,2,10)`,
	`INSERT INTO location (location_id, name, parent_location) VALUES
		(1,'Province',NULL),(3,'North',1),(5,'South',1)`,
	`INSERT INTO encounter (encounter_id, patient_id, location_id,
		encounter_datetime, voided, creator) VALUES
		(1,2,5,'2021-01-10',0,1),(2,4,5,'2021-02-11',0,1),
		(3,6,3,'2021-03-12',0,1),(4,4,3,'2021-04-13',0,1)`,
	`INSERT INTO obs (obs_id, person_id, encounter_id, location_id, creator)
		VALUES
		(1,2,1,5,1),(2,4,2,5,1),(3,6,3,3,1),(4,4,4,3,1),
		(5,7,NULL,NULL,1),(6,8,NULL,NULL,2)`,
	`INSERT INTO provider (provider_id, person_id) VALUES (1,2),(2,4)`,
	`INSERT INTO encounter_provider (encounter_provider_id, encounter_id,
		provider_id) VALUES (1,1,1),(2,2,2),(3,3,1)`,
	`INSERT INTO patient_program (patient_program_id, patient_id) VALUES
		(1,2),(2,6)`,
	`INSERT INTO patient_state (patient_state_id, patient_program_id) VALUES
		(1,1),(2,1),(3,2)`,
	`INSERT INTO user_property (user_id, property) VALUES
		(1,'locale'),(2,'locale')`,
	`INSERT INTO user_role (user_id, role) VALUES
		(1,'System Developer'),(2,'Clerk')`,
	`INSERT INTO concept (concept_id, name) VALUES (1,'WEIGHT'),(2,'HEIGHT')`,
	`INSERT INTO audit_log (audit_log_id, person_id) VALUES (1,2),(2,4)`,
	`INSERT INTO global_property (property, property_value) VALUES
		('version','2.3')`,
}

// LoadFixture creates the reduced OpenMRS schema with its data in the
// given database.
func LoadFixture(ctx context.Context, db *sql.DB, database string) error {
	conn, err := db.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	stmts := []string{"USE `" + database + "`"}
	stmts = append(stmts, fixtureSchema...)
	for i, v := range fixtureKeys {
		stmt, err := fkStatement(i, v)
		if err != nil {
			return err
		}
		stmts = append(stmts, stmt)
	}
	stmts = append(stmts, "SET foreign_key_checks=0")
	stmts = append(stmts, fixtureData...)

	for _, v := range stmts {
		if _, err := conn.ExecContext(ctx, v); err != nil {
			return fmt.Errorf("fixture statement %q: %w", v, err)
		}
	}
	return nil
}

// fkStatement turns "child(col) parent(key)" into ALTER TABLE.
func fkStatement(i int, spec string) (string, error) {
	var child, parent string
	parts := strings.Fields(spec)
	if len(parts) != 2 {
		return "", fmt.Errorf("bad foreign key %q", spec)
	}
	child, parent = parts[0], parts[1]
	ct, cc, ok1 := strings.Cut(strings.TrimSuffix(child, ")"), "(")
	pt, pc, ok2 := strings.Cut(strings.TrimSuffix(parent, ")"), "(")
	if !ok1 || !ok2 {
		return "", fmt.Errorf("bad foreign key %q", spec)
	}
	return fmt.Sprintf(
		"ALTER TABLE %s ADD CONSTRAINT fk_%d FOREIGN KEY (%s) REFERENCES %s (%s)",
		ct, i+1, cc, pt, pc), nil
}
