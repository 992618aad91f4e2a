// Package services holds the journal's application layer. JournalService
// owns the roster store and is the only path through which HTTP handlers and
// the CLI read or change the journal. Every mutation is traced, counted and
// followed by a ChangeEvent for connected clients.
//
// HealthService reports liveness, readiness (the snapshot slot answers a
// ping) and build information.
package services
