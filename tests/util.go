// Package testutil holds the helpers shared by the test suites.
package testutil

import (
	"context"

	"fmt"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/AI-Fit-GMS/gms/core"
	"github.com/AI-Fit-GMS/gms/core/equipment"
	"github.com/AI-Fit-GMS/gms/core/user"
	"github.com/AI-Fit-GMS/gms/storage/database"
)

// NewConfig loads the TEST configuration.
func NewConfig(t *testing.T) *core.Config {
	t.Setenv("ENV", "TEST")
	conf := core.NewConfig()
	conf.Debug = false
	return conf
}

// NewValidator returns a validator with every domain validation registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	translator := core.NewTranslator()
	validate := core.NewValidator(translator)
	user.RegisterValidators(validate, translator)
	equipment.RegisterValidators(validate, translator)
	return validate, translator
}

type testLogger struct {
	t testing.TB
}

// NewLogger returns a core.Logger writing to the test log.
func NewLogger(t testing.TB) core.Logger {
	return &testLogger{t: t}
}

func (l *testLogger) log(level, msg string, args []interface{}) {
	l.t.Helper()
	if len(args) == 0 {
		l.t.Logf("%s: %s", level, msg)
		return
	}
	l.t.Logf("%s: %s %s", level, msg, fmt.Sprint(args...))
}

func (l *testLogger) Debug(msg string, args ...interface{}) { l.log("DEBUG", msg, args) }
func (l *testLogger) Info(msg string, args ...interface{})  { l.log("INFO", msg, args) }
func (l *testLogger) Warn(msg string, args ...interface{})  { l.log("WARN", msg, args) }
func (l *testLogger) Error(msg string, args ...interface{}) { l.log("ERROR", msg, args) }
func (l *testLogger) Fatal(msg string, args ...interface{}) {
	l.t.Helper()
	l.t.Fatalf("FATAL: %s %s", msg, fmt.Sprint(args...))
}

// OpenSQLite opens a migrated, in-memory sqlite database closed at the end of the test.
func OpenSQLite(t *testing.T) *sqlx.DB {
	t.Helper()

	sqlx.BindDriver("sqlite", sqlx.QUESTION)
	db, err := sqlx.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	if err != nil {
		t.Fatalf("OpenSQLite() failed: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	if err = database.Migrate(db.DB, "sqlite3"); err != nil {
		t.Fatalf("OpenSQLite() failed: %v", err)
	}
	return db
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Roles:     roles,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}
