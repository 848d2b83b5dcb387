package db

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"
	"strings"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/yungbote/playbook-backend/internal/platform/apierr"
)

// TranslateError maps store errors onto apierr kinds. Errors that already
// carry a kind pass through untouched.
func TranslateError(op string, err error) error {
	if err == nil {
		return nil
	}
	var typed *apierr.Error
	if errors.As(err, &typed) {
		return err
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apierr.Wrap(apierr.KindNotFound, op, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return apierr.Wrap(apierr.KindForeignKeyViolation, op, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apierr.Wrap(apierr.KindValidation, op, err)
	case isTransient(err):
		return apierr.Wrap(apierr.KindTransient, op, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "23503":
			return apierr.Wrap(apierr.KindForeignKeyViolation, op, err)
		case pgErr.Code == "23505", strings.HasPrefix(pgErr.Code, "22"):
			return apierr.Wrap(apierr.KindValidation, op, err)
		case strings.HasPrefix(pgErr.Code, "08"), pgErr.Code == "53300", pgErr.Code == "40001", pgErr.Code == "40P01":
			return apierr.Wrap(apierr.KindTransient, op, err)
		}
	}

	var myErr *mysqlDriver.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1451, 1452:
			return apierr.Wrap(apierr.KindForeignKeyViolation, op, err)
		case 1062, 1406:
			return apierr.Wrap(apierr.KindValidation, op, err)
		case 1205, 1213, 1040:
			return apierr.Wrap(apierr.KindTransient, op, err)
		}
	}

	if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
		return apierr.Wrap(apierr.KindForeignKeyViolation, op, err)
	}
	if strings.Contains(err.Error(), "database is locked") {
		return apierr.Wrap(apierr.KindTransient, op, err)
	}
	return apierr.Wrap(apierr.KindInternal, op, err)
}

func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, mysqlDriver.ErrInvalidConn) {
		return true
	}
	if pgconn.Timeout(err) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}
