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
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/FriendsInGlobalHealth/fghextractor/internal/iodb"
	"github.com/FriendsInGlobalHealth/fghextractor/internal/iofs"
	"github.com/FriendsInGlobalHealth/fghextractor/internal/iologger"
	app "github.com/FriendsInGlobalHealth/fghextractor/pkg"
	"github.com/FriendsInGlobalHealth/fghextractor/pkg/config"
	"github.com/gnames/gn"
	"github.com/gnames/gnlib"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	homeDir string
	opts    []config.Option
	cfg     *config.Config
)

// getRootCmd returns the base command with all subcommands attached.
func getRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Version: fmt.Sprintf("version: %s\nbuild:   %s", app.Version, app.Build),
		Use:     "fghextractor",
		Short:   "Extracts a patient subset of an OpenMRS MySQL database",
		Long: `FGHextractor copies a consistent subset of an OpenMRS database into
a new MySQL database and dumps it to a SQL file.

Patients are selected by a query in ~/.config/fghextractor/patients.sql
for given location ids and an end date. Every row that references the
selected persons or patients is copied together with everything those
rows need, so the new database keeps all its foreign keys valid.

Configuration precedence (highest to lowest):
  1. CLI flags
  2. Environment variables (FGHEXTRACTOR_*)
  3. Config file (~/.config/fghextractor/config.yaml)
  4. Built-in defaults

Environment variables:
  FGHEXTRACTOR_DATABASE_HOST         MySQL host
  FGHEXTRACTOR_DATABASE_PORT         MySQL port
  FGHEXTRACTOR_DATABASE_USER         MySQL user
  FGHEXTRACTOR_DATABASE_PASSWORD     MySQL password
  FGHEXTRACTOR_DATABASE_DATABASE     Source database
  FGHEXTRACTOR_EXTRACT_NEW_DATABASE  Target database
  FGHEXTRACTOR_LOG_LEVEL             Log level (debug/info/warn/error)`,
		PersistentPreRunE: bootstrap,
		SilenceErrors:     true,
		SilenceUsage:      true,
	}

	// Remove the automatic "fghextractor version" prefix
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	// Override version flag to use -V (consistent with other gn projects)
	rootCmd.Flags().BoolP("version", "V", false, "version for fghextractor")

	rootCmd.AddCommand(getExtractCmd())
	rootCmd.AddCommand(getReferencesCmd())

	return rootCmd
}

func bootstrap(cmd *cobra.Command, args []string) error {
	var err error
	homeDir, err = os.UserHomeDir()
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if err = iofs.EnsureDirs(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	// Initialize logging with hardcoded defaults. Every run starts a
	// fresh log file, the reconfigured logger appends to it.
	defaultLog := config.LogConfig{
		Format:      "json",
		Level:       "info",
		Destination: "file",
	}
	if err = iologger.Init(config.LogDir(homeDir), defaultLog, false); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if err = iofs.EnsureConfigFile(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if err = iofs.EnsurePatientQueryFile(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	gn.Info(
		"Configuration files are available at <em>%s</em>",
		config.ConfigDir(homeDir),
	)

	var cfgViper *config.Config
	if cfgViper, err = initConfig(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	cfg = config.New()
	opts = cfgViper.ToOptions()
	cfg.Update(opts)

	// Set HomeDir after config is loaded
	cfg.Update([]config.Option{config.OptHomeDir(homeDir)})

	if err = reconfigureLogging(cfg); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	slog.Info("Configuration loaded", "config_file", config.ConfigFilePath(homeDir))

	return nil
}

// reconfigureLogging reinitializes the logger with the loaded configuration.
func reconfigureLogging(cfg *config.Config) error {
	logDir := config.LogDir(cfg.HomeDir)
	return iologger.Init(logDir, cfg.Log, true)
}

// printError shows connection problems with hints on how to fix them,
// other errors with their message.
func printError(err error) {
	var connErr iodb.ConnectionError
	if errors.As(err, &connErr) {
		gnlib.PrintUserMessage(err)
		return
	}
	gn.PrintErrorMessage(err)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := getRootCmd().Execute()
	if err != nil {
		os.Exit(1)
	}
}

func initConfig(home string) (*config.Config, error) {
	var err error
	cfgPath := config.ConfigFilePath(home)
	v := viper.New()
	v.SetConfigFile(cfgPath)

	initEnvVars(v)

	if err = v.ReadInConfig(); err != nil {
		return nil, iofs.ReadFileError(cfgPath, err)
	}

	var res config.Config
	if err = v.Unmarshal(&res); err != nil {
		return nil, iofs.ReadFileError(cfgPath, err)
	}

	return &res, nil
}

func initEnvVars(v *viper.Viper) {
	// Set environment variables we want.
	// We set them manually so we can see clearly which env variables are allowed.
	// These match the fields included in config.ToOptions() - i.e., persistent
	// configuration that can be stored in config.yaml.
	v.SetEnvPrefix("FGHEXTRACTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Database configuration
	v.BindEnv("database.host", "FGHEXTRACTOR_DATABASE_HOST")
	v.BindEnv("database.port", "FGHEXTRACTOR_DATABASE_PORT")
	v.BindEnv("database.user", "FGHEXTRACTOR_DATABASE_USER")
	v.BindEnv("database.password", "FGHEXTRACTOR_DATABASE_PASSWORD")
	v.BindEnv("database.database", "FGHEXTRACTOR_DATABASE_DATABASE")
	v.BindEnv("database.max_connections", "FGHEXTRACTOR_DATABASE_MAX_CONNECTIONS")
	v.BindEnv("database.batch_size", "FGHEXTRACTOR_DATABASE_BATCH_SIZE")

	// Extract configuration
	v.BindEnv("extract.new_database", "FGHEXTRACTOR_EXTRACT_NEW_DATABASE")
	v.BindEnv("extract.end_date", "FGHEXTRACTOR_EXTRACT_END_DATE")
	v.BindEnv("extract.patient_query_file", "FGHEXTRACTOR_EXTRACT_PATIENT_QUERY_FILE")
	v.BindEnv("extract.restrict_by_location", "FGHEXTRACTOR_EXTRACT_RESTRICT_BY_LOCATION")
	v.BindEnv("extract.drop_target_after", "FGHEXTRACTOR_EXTRACT_DROP_TARGET_AFTER")
	v.BindEnv("extract.dump_dir", "FGHEXTRACTOR_EXTRACT_DUMP_DIR")
	v.BindEnv("extract.skip_dump", "FGHEXTRACTOR_EXTRACT_SKIP_DUMP")
	v.BindEnv("extract.schema_file", "FGHEXTRACTOR_EXTRACT_SCHEMA_FILE")
	v.BindEnv("extract.max_backfill_rounds", "FGHEXTRACTOR_EXTRACT_MAX_BACKFILL_ROUNDS")

	// Log configuration
	v.BindEnv("log.level", "FGHEXTRACTOR_LOG_LEVEL")
	v.BindEnv("log.format", "FGHEXTRACTOR_LOG_FORMAT")
	v.BindEnv("log.destination", "FGHEXTRACTOR_LOG_DESTINATION")

	// General configuration
	v.BindEnv("jobs_number", "FGHEXTRACTOR_JOBS_NUMBER")

	v.AutomaticEnv()
}
