// Package database owns the storage connection.
//
// # Architecture
//
//	database/
//	├── database.go      # Driver selection, connection limits, schema bootstrap
//	├── books/           # Book and author statements (the JOIN, INSERT, UPDATE, DELETE)
//	└── audit/           # Audit trail of mutations
//
// # Using Sub-packages
//
//	db, err := database.NewDatabase(cfg.Database)
//
//	booksRepo := books.NewRepository(db.DB)
//	auditRepo := audit.NewRepository(db.DB)
//
//	records, err := booksRepo.ListBooks(ctx)
//
// # Drivers
//
// DATABASE_DRIVER selects sqlite (default), postgres or mysql. The pool is
// capped at DATABASE_MAX_OPEN_CONNS, which defaults to one connection, so
// the process issues one statement at a time.
//
// # Schema
//
// Authors and Books are normally pre-existing. DATABASE_CREATE_SCHEMA=true
// creates them when missing; there are no versioned migrations.
package database
