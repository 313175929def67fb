// Package memory contains process-local implementations of the store
// contracts defined in core: an in-memory MemoryStore for durable facts and
// an in-memory MessageStore for session logs. Both rank similarity queries
// with a brute-force cosine scan (see the vector package), which is the
// intended scale assumption for a single-user store. Depend on the core
// interfaces in your code and pick an implementation (these, the sqlite
// store, or the chromem store) at wiring time.
package memory
