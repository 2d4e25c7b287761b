// Package repository holds the MySQL persistence layer of the
// marketplace together with the Store abstraction the service layer
// runs its units of work against.  The sentinel errors below are
// shared by every Store implementation so callers can branch on them
// with errors.Is regardless of the engine in use.
package repository

import (
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a lookup by primary key matches no row.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when a user is created with an email that
// already belongs to another account.
var ErrEmailExists = errors.New("email already exists")

// ErrConflict is returned when a write collides with a unique key other
// than the user email, such as a duplicate favorite.
var ErrConflict = errors.New("conflict")

// ErrReadOnly is returned by write methods invoked inside a read-only
// unit of work.
var ErrReadOnly = errors.New("write in read-only unit of work")

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
