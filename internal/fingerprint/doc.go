// Package fingerprint computes the deterministic identities the reconciler
// deduplicates on.
//
// Three identities exist:
//   - message fingerprint: one per inbound email delivery
//   - content fingerprint: one per logical task, across every source
//   - promotion key: one per promotion of a board task into the task manager
//
// All functions are pure. Digests are lowercase hex SHA-256 (64 chars).
package fingerprint
