// Package repositories implements the persistence layer over SQLite.
//
// The only persisted entity is the sync run history ([RunRepository]);
// reconciliation inputs are fetched fresh from the remote service on every
// pass and never cached locally.
package repositories
