// Package cache holds the in-memory, per-user routine caches of the client.
//
// TimedCache is a generic map of owner-tagged entries that expire after a
// caller-supplied TTL. RoutineCache builds on it and keeps three kinds of
// routine state for the current user: per-day class lists, the full
// department schedule and the list of active days. Each kind has its own
// TTL (see TTLs) and every mutation publishes a timestamp on Updates so a
// UI can re-read without a per-field event taxonomy.
//
// Nothing here is persisted; a process restart starts cold.
package cache
