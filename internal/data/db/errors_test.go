package db

import (
	"context"
	"errors"
	"fmt"
	"testing"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/yungbote/playbook-backend/internal/platform/apierr"
)

func TestTranslateError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want apierr.Kind
	}{
		{"record not found", gorm.ErrRecordNotFound, apierr.KindNotFound},
		{"gorm fk", gorm.ErrForeignKeyViolated, apierr.KindForeignKeyViolation},
		{"pg fk", &pgconn.PgError{Code: "23503"}, apierr.KindForeignKeyViolation},
		{"pg conn", &pgconn.PgError{Code: "08006"}, apierr.KindTransient},
		{"mysql fk", &mysqlDriver.MySQLError{Number: 1452}, apierr.KindForeignKeyViolation},
		{"mysql deadlock", &mysqlDriver.MySQLError{Number: 1213}, apierr.KindTransient},
		{"sqlite fk", errors.New("FOREIGN KEY constraint failed"), apierr.KindForeignKeyViolation},
		{"deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), apierr.KindTransient},
		{"other", errors.New("syntax error"), apierr.KindInternal},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := apierr.KindOf(TranslateError("op", tc.err))
			if got != tc.want {
				t.Fatalf("kind: want=%s got=%s", tc.want, got)
			}
		})
	}
}

func TestTranslateErrorPassesTypedErrors(t *testing.T) {
	in := apierr.NotFound("GetScenario", "scenario %d not found", 1)
	if out := TranslateError("outer", in); out != error(in) {
		t.Fatalf("typed error should pass through unchanged, got=%v", out)
	}
	if TranslateError("op", nil) != nil {
		t.Fatalf("nil should stay nil")
	}
}

func TestSQLiteDSNEnablesForeignKeys(t *testing.T) {
	if got := sqliteDSN(Config{DSN: "file:x?mode=memory"}); got != "file:x?mode=memory&_foreign_keys=on" {
		t.Fatalf("dsn: got=%q", got)
	}
	if got := sqliteDSN(Config{Name: "playbook"}); got != "file:playbook.db?_foreign_keys=on" {
		t.Fatalf("dsn: got=%q", got)
	}
	if got := sqliteDSN(Config{DSN: "file:y?_foreign_keys=on"}); got != "file:y?_foreign_keys=on" {
		t.Fatalf("dsn: got=%q", got)
	}
}
