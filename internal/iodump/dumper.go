// Package iodump exports the target database with the mysqldump
// command line tool.
package iodump

import (
	"bufio"
	"bytes"
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/FriendsInGlobalHealth/fghextractor/pkg/config"
	"github.com/dustin/go-humanize"
)

// timeFormat is ISO-8601 local date and time.
const timeFormat = "2006-01-02T15:04:05"

// MySQLDumper runs mysqldump against the server of the source database.
type MySQLDumper struct {
	// Command is the dump executable, mysqldump by default.
	Command string

	db  config.DatabaseConfig
	dir string
	now func() time.Time
}

// New creates a dumper that writes files into the configured dump
// directory.
func New(cfg *config.Config) *MySQLDumper {
	return &MySQLDumper{
		Command: "mysqldump",
		db:      cfg.Database,
		dir:     cfg.Extract.DumpDir,
		now:     time.Now,
	}
}

// FileName returns the dump file name for a database at the given time.
func FileName(database string, t time.Time) string {
	return database + "." + t.Format(timeFormat) + ".sql"
}

// Dump writes a compact dump of the database and returns the path of the
// file. Errors are logged together with the tool's stderr and returned,
// callers decide if they are fatal.
func (d *MySQLDumper) Dump(ctx context.Context, database string) (string, error) {
	path := filepath.Join(d.dir, FileName(database, d.now()))

	out, err := os.Create(path)
	if err != nil {
		return "", StartError(d.Command, err)
	}
	defer out.Close()

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, d.Command, d.args(database)...)
	cmd.Stdout = out
	cmd.Stderr = &stderr

	slog.Info("Creating SQL dump file", "path", path)
	if err = cmd.Start(); err != nil {
		out.Close()
		os.Remove(path)
		slog.Error("Cannot start dump tool", "command", d.Command, "error", err)
		return "", StartError(d.Command, err)
	}

	if err = cmd.Wait(); err != nil {
		code := -1
		if exitErr, ok := err.(*exec.ExitError); ok {
			code = exitErr.ExitCode()
		}
		slog.Error("Dump tool failed",
			"command", d.Command,
			"database", database,
			"exit_code", code,
		)
		sc := bufio.NewScanner(&stderr)
		for sc.Scan() {
			slog.Error(sc.Text())
		}
		return path, ExitError(database, code, stderr.String(), err)
	}

	if info, err := out.Stat(); err == nil {
		slog.Info("SQL dump file generated",
			"path", path,
			"size", humanize.Bytes(uint64(info.Size())),
		)
	}
	return path, nil
}

func (d *MySQLDumper) args(database string) []string {
	res := []string{"-u" + d.db.User}
	if d.db.Password != "" {
		res = append(res, "-p"+d.db.Password)
	}
	return append(res,
		"--host="+d.db.Host,
		"--port="+strconv.Itoa(d.db.Port),
		"--protocol=tcp",
		"--compact",
		database,
	)
}
