// Package storage provides the in-memory collections that back test plans.
//
// Key types:
//
//   - Log: a concurrency-safe, append-only sequence with snapshot reads
//
// A Log accepts many concurrent writers. Readers get copies, so a snapshot
// taken by a verifying goroutine is never affected by later appends.
package storage
