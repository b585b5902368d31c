// Package db implements the relational store of the service on top of xorm
// and sqlite.
package db

import (
	"context"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
	"xorm.io/xorm"
	xlog "xorm.io/xorm/log"
	"xorm.io/xorm/names"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Connection to the store.
type Connection struct {
	engine *xorm.Engine
}

// Close the database.
func (conn *Connection) Close() error {
	return conn.engine.Close()
}

// ShowSQL enables or disables logging of every executed statement.
// Statements are logged at info level; otherwise only warnings are.
func (conn *Connection) ShowSQL(show bool) {
	conn.engine.ShowSQL(show)
	level := xlog.LOG_WARNING
	if show {
		level = xlog.LOG_INFO
	}
	conn.engine.Logger().SetLevel(level)
}

// SetLogger directs the log output of the engine to logger.
func (conn *Connection) SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	show := conn.engine.Logger().IsShowSQL()
	conn.engine.SetLogger(xlog.NewSimpleLogger(zap.NewStdLog(logger.Named("xorm")).Writer()))
	conn.ShowSQL(show)
}

// dsn returns the data source name for the sqlite file at path, with
// foreign key enforcement enabled for every connection the driver opens.
func dsn(driver, path string) (string, error) {
	switch driver {
	case "sqlite3":
		return path + "?_foreign_keys=1&_busy_timeout=5000", nil
	case "sqlite":
		return path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", nil
	}
	return "", fmt.Errorf("unsupported database driver %q", driver)
}

// New returns a database connection for the sqlite db file at the given path
// using the named driver ("sqlite3" or "sqlite").  If the file does not
// exist it is created.  Pending schema migrations are applied before New
// returns.
func New(driver, path string, logger *zap.Logger) (*Connection, error) {
	source, err := dsn(driver, path)
	if err != nil {
		return nil, err
	}
	engine, err := xorm.NewEngine(driver, source)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	conn := &Connection{engine}
	conn.SetLogger(logger)
	engine.SetMapper(names.GonicMapper{})
	// pragmas are per connection
	engine.SetMaxOpenConns(1)

	if _, err := engine.Exec("PRAGMA foreign_keys=ON"); err != nil {
		engine.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := conn.migrate(context.Background()); err != nil {
		engine.Close()
		return nil, err
	}
	return conn, nil
}

// migrations holds the schema versions in order.  A version is applied in a
// single transaction and recorded in schema_migrations.
var migrations = [][]string{
	{
		`CREATE TABLE users (
			id TEXT PRIMARY KEY,
			role TEXT NOT NULL,
			full_name TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL DEFAULT '',
			confirmed INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME
		)`,
		`CREATE TABLE sessions (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			created DATETIME,
			expires DATETIME
		)`,
		`CREATE TABLE forms (
			id TEXT PRIMARY KEY,
			merchant_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			is_published INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE INDEX idx_forms_merchant ON forms(merchant_id)`,
		`CREATE TABLE form_fields (
			id TEXT PRIMARY KEY,
			form_id TEXT NOT NULL REFERENCES forms(id) ON DELETE CASCADE,
			field_type TEXT NOT NULL,
			label TEXT NOT NULL,
			placeholder TEXT NOT NULL DEFAULT '',
			required INTEGER NOT NULL DEFAULT 0,
			options TEXT,
			order_index INTEGER NOT NULL
		)`,
		`CREATE INDEX idx_form_fields_form ON form_fields(form_id)`,
		`CREATE TABLE submissions (
			id TEXT PRIMARY KEY,
			form_id TEXT NOT NULL REFERENCES forms(id) ON DELETE CASCADE,
			client_id TEXT NOT NULL DEFAULT '',
			submitted_at DATETIME
		)`,
		`CREATE INDEX idx_submissions_form ON submissions(form_id)`,
		`CREATE INDEX idx_submissions_client ON submissions(client_id)`,
		// field_id is not a foreign key: answers outlive the field rows that
		// are replaced when a form is edited.
		`CREATE TABLE submission_answers (
			id TEXT PRIMARY KEY,
			submission_id TEXT NOT NULL REFERENCES submissions(id) ON DELETE CASCADE,
			field_id TEXT NOT NULL,
			value TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX idx_answers_submission ON submission_answers(submission_id)`,
	},
}

func (conn *Connection) migrate(ctx context.Context) error {
	if _, err := conn.engine.Context(ctx).Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	for idx, stmts := range migrations {
		version := idx + 1
		var count int64
		if _, err := conn.engine.Context(ctx).SQL("SELECT COUNT(*) FROM schema_migrations WHERE version = ?", version).Get(&count); err != nil {
			return fmt.Errorf("check migration %d: %w", version, err)
		}
		if count > 0 {
			continue
		}
		if err := conn.apply(ctx, version, stmts); err != nil {
			return err
		}
	}
	return nil
}

func (conn *Connection) apply(ctx context.Context, version int, stmts []string) error {
	sess := conn.engine.NewSession()
	defer sess.Close()
	sess.Context(ctx)
	if err := sess.Begin(); err != nil {
		return fmt.Errorf("begin migration %d: %w", version, err)
	}
	for _, stmt := range stmts {
		if _, err := sess.Exec(stmt); err != nil {
			sess.Rollback()
			return fmt.Errorf("migration %d: %w", version, err)
		}
	}
	if _, err := sess.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		sess.Rollback()
		return fmt.Errorf("record migration %d: %w", version, err)
	}
	if err := sess.Commit(); err != nil {
		return fmt.Errorf("commit migration %d: %w", version, err)
	}
	return nil
}

// found converts the result of an xorm Get to an error.
func found(has bool, err error) error {
	if err != nil {
		return err
	}
	if !has {
		return ErrNotFound
	}
	return nil
}
