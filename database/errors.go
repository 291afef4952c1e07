package database

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	pgUndefinedTable  = "42P01"
	mysqlNoSuchTable  = 1146
	sqliteNoSuchTable = "no such table"
	relationNotExists = "does not exist"
)

// IsMissingRelation reports whether err means the queried table itself is
// absent from the schema, for any of the supported drivers.
func IsMissingRelation(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUndefinedTable
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlNoSuchTable
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, sqliteNoSuchTable) ||
		(strings.Contains(msg, "relation") && strings.Contains(msg, relationNotExists))
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
