// Package storage provides audit record storage backends.
//
// SQLiteStorage is the production backend, a single database file with WAL
// mode for concurrent reads during writes. MemoryStorage serves tests and
// development. Both implement audit.Storage and are safe for concurrent use.
package storage
