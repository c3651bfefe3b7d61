// Package store provides SQL-backed durable storage for journal rows.
//
// The store owns two tables:
//   - Journal: one row per persisted event, unique on (persistence_id, sequence_number)
//   - Metadata: the deletion high-water mark per persistence id, kept when
//     compatibility mode is enabled so it survives physical purges
//
// # Statements
//
// Every statement method takes a DBTX, so the same method runs directly on
// the pool or inside a caller-owned transaction. The store never opens a
// transaction on its own; transaction boundaries belong to the journal.
//
// All range reads use ORDER BY sequence_number ASC regardless of the
// physical insertion order.
//
// # Dialects
//
//   - sqlite: github.com/mattn/go-sqlite3 (driver "sqlite3") or
//     modernc.org/sqlite (driver "sqlite"); WAL mode, busy_timeout=5000
//   - postgres: github.com/lib/pq, bulk loads use COPY
//   - mysql: github.com/go-sql-driver/mysql
package store
