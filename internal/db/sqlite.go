package db

import (
	"database/sql/driver" // UDF argument values
	"strings"             // Unicode case folding
	"sync"                // One-time registration

	gosqlite "github.com/glebarez/go-sqlite" // SQLite driver behind glebarez/sqlite
)

var (
	sqliteFuncsOnce sync.Once
	sqliteFuncsErr  error
)

// RegisterSQLiteFunctions replaces SQLite's ASCII-only LOWER with a Unicode
// aware one so searches fold case the same way on every driver. It applies to
// connections opened after the first call.
func RegisterSQLiteFunctions() error {
	sqliteFuncsOnce.Do(func() {
		sqliteFuncsErr = gosqlite.RegisterDeterministicScalarFunction("lower", 1, unicodeLower)
	})
	return sqliteFuncsErr
}

// unicodeLower lower-cases text arguments and passes everything else through
func unicodeLower(_ *gosqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil // NULL and numbers
	}
}
