// Package migration applies versioned SQL files to a database.
//
// Files are read from an fs.FS (normally an embed.FS owned by the store
// package) and must be named {version}_{description}.sql. Applied versions
// are tracked in a schema_migrations table; each file runs in its own
// transaction. The same engine serves SQLite and PostgreSQL through Dialect.
package migration
