// Package core defines the shared domain types and store contracts used
// across mindkeep: conversation messages and roles, tool call payloads,
// durable memory facts, session records and the persistence interfaces the
// agent loop consumes. Keeping the contracts here (and implementations in
// sibling packages) avoids dependency cycles and lets backends be swapped at
// wiring time.
package core
