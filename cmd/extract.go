/*
Copyright © 2025 Dmitry Mozzherin <dmozzherin@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/FriendsInGlobalHealth/fghextractor/internal/iocopy"
	"github.com/FriendsInGlobalHealth/fghextractor/internal/iodb"
	"github.com/FriendsInGlobalHealth/fghextractor/internal/iodump"
	"github.com/FriendsInGlobalHealth/fghextractor/internal/ioextract"
	"github.com/FriendsInGlobalHealth/fghextractor/internal/iofs"
	"github.com/FriendsInGlobalHealth/fghextractor/internal/iologger"
	"github.com/FriendsInGlobalHealth/fghextractor/internal/ioquery"
	"github.com/FriendsInGlobalHealth/fghextractor/internal/ioschema"
	"github.com/FriendsInGlobalHealth/fghextractor/pkg/db"
	"github.com/FriendsInGlobalHealth/fghextractor/pkg/lifecycle"
	"github.com/FriendsInGlobalHealth/fghextractor/pkg/schema"
	"github.com/gnames/gn"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// getExtractCmd returns the extract command.
// Extracted as a function to facilitate testing and dynamic
// command registration.
func getExtractCmd() *cobra.Command {
	var flags extractFlags

	extractCmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract a patient subset into a new database",
		Long: `Copy patients of given locations, and everything they reference,
from the source OpenMRS database into a new MySQL database.

This command:
  1. Checks the configuration and renders the patient query
  2. Connects to MySQL and makes sure the new database does not exist
  3. Creates the new database and copies tables in phases:
     - Structure of structure-only tables, without rows
     - Root entities (person, patient)
     - Tables that reference root entities, with backfill of missing persons
     - Relationships and bridge tables, with backfill of missing persons
     - All remaining tables
     - Accounts referenced by copied rows
  4. Dumps the new database with mysqldump
  5. Writes a run report next to the dump

The new database is never overwritten. Interrupting the run with Ctrl-C
stops it after the running statements are rolled back.

Examples:
  # Patients of locations 5 and 7 up to the end of 2023
  fghextractor extract -n openmrs_q4 -l 5,7 -e 2023-12-31

  # Rows of location restricted tables only for the given locations
  fghextractor extract -n openmrs_q4 -l 5 --restrict-by-location

  # Use another source database and drop the new one after dumping
  fghextractor extract -u mysql://root:secret@db:3306/openmrs \
    -n openmrs_tmp -l 5 --drop-after`,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runExtract(cmd, &flags)
			if err != nil {
				printError(err)
			}
			return err
		},
	}

	flags.register(extractCmd)

	return extractCmd
}

func runExtract(cmd *cobra.Command, flags *extractFlags) error {
	cfg.Update(flags.options(cmd))

	if err := cfg.CheckExtract(); err != nil {
		return err
	}

	if err := iofs.EnsureDumpDir(cfg.Extract.DumpDir); err != nil {
		return err
	}

	// A broken query file has to be found before anything is created.
	root, err := ioquery.LoadRootFilter(cfg, time.Now())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM,
	)
	defer stop()

	op := iodb.NewMySQLOperator()
	if err = op.Connect(ctx, &cfg.Database); err != nil {
		return err
	}
	defer op.Close()

	gn.Info("Connected to database: <em>%s@%s:%d/%s</em>",
		cfg.Database.User, cfg.Database.Host,
		cfg.Database.Port, cfg.Database.Database)

	in, err := introspector(op)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	iologger.WithRunID(runID)

	var ex lifecycle.Extractor = ioextract.New(
		cfg, root, op, in,
		iocopy.New(op.DB(), cfg),
		iodump.New(cfg),
		ioextract.OptRunID(runID),
	)
	return ex.Extract(ctx)
}

// introspector returns the declared foreign key graph when a schema file
// is configured, otherwise the graph of the source database.
func introspector(op db.Operator) (schema.Introspector, error) {
	if cfg.Extract.SchemaFile != "" {
		res, err := ioschema.LoadDeclared(cfg.Extract.SchemaFile)
		if err != nil {
			return nil, err
		}
		gn.Info("Foreign keys are read from <em>%s</em>", cfg.Extract.SchemaFile)
		return res, nil
	}
	return ioschema.NewIntrospector(op.DB(), cfg.Database.Database), nil
}
