// Package database provides the SQLite connection and schema migrations for
// Luminary.
//
// The connection runs in WAL mode with a busy timeout and a single open
// connection, matching SQLite's single-writer model. Migrations are plain
// SQL files named YYYYMMDD_HHMMSS_description.{up,down}.sql, registered
// through MigrationsFS by the migrations package, and applied in version
// order with one transaction per migration.
//
// Usage:
//
//	db, err := database.Open(cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
package database
