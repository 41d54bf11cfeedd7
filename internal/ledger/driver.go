package ledger

import (
	"errors"
	"strings"

	mattn "github.com/mattn/go-sqlite3"
	"modernc.org/sqlite"
	sqlitelib "modernc.org/sqlite/lib"
)

// Supported database/sql driver names.
const (
	// DriverCGO is github.com/mattn/go-sqlite3.
	DriverCGO = "sqlite3"
	// DriverPure is modernc.org/sqlite, which needs no C toolchain.
	DriverPure = "sqlite"
)

// IsSupportedDriver reports whether name is one of the registered drivers.
func IsSupportedDriver(name string) bool {
	return name == DriverCGO || name == DriverPure
}

type constraintKind int

const (
	constraintNone constraintKind = iota
	constraintPrimaryKey
	constraintUnique
	constraintForeignKey
	constraintOther
)

// classifyConstraint maps a driver error to the constraint it violated.
// Both drivers report SQLite extended result codes; the message check
// covers builds where extended codes are disabled.
func classifyConstraint(err error) constraintKind {
	if err == nil {
		return constraintNone
	}

	var me mattn.Error
	if errors.As(err, &me) {
		switch me.ExtendedCode {
		case mattn.ErrConstraintPrimaryKey:
			return constraintPrimaryKey
		case mattn.ErrConstraintUnique:
			return constraintUnique
		case mattn.ErrConstraintForeignKey:
			return constraintForeignKey
		}
		if me.Code == mattn.ErrConstraint {
			return classifyMessage(err.Error())
		}
		return constraintNone
	}

	var pe *sqlite.Error
	if errors.As(err, &pe) {
		switch pe.Code() {
		case sqlitelib.SQLITE_CONSTRAINT_PRIMARYKEY:
			return constraintPrimaryKey
		case sqlitelib.SQLITE_CONSTRAINT_UNIQUE:
			return constraintUnique
		case sqlitelib.SQLITE_CONSTRAINT_FOREIGNKEY:
			return constraintForeignKey
		}
		if pe.Code()&0xff == sqlitelib.SQLITE_CONSTRAINT {
			return classifyMessage(err.Error())
		}
		return constraintNone
	}

	return constraintNone
}

func classifyMessage(msg string) constraintKind {
	switch {
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return constraintForeignKey
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return constraintUnique
	default:
		return constraintOther
	}
}
