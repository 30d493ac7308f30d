// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The IndexStore is the only stateful service: it owns the current vector
// index snapshot and serialises inserts. Ingest and answer services are
// stateless wrappers around it.
package services
