package engine

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // register pure-Go SQLite driver
)

// BusyTimeoutMillis is how long a connection waits on a locked database.
const BusyTimeoutMillis = 5000

// Open opens a SQLite database using the modernc.org/sqlite driver and
// registers the wfsync SQL functions.
//
// For file-based databases, pass a path like "./lds.sqlite". For in-memory
// databases, pass ":memory:". The pool is limited to one connection: an
// in-memory database exists per connection, and SQLite admits a single
// writer anyway.
func Open(dsn string) (*sql.DB, error) {
	if err := RegisterFunctions(); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", BusyTimeoutMillis)); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
