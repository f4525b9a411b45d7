// Package record holds the in-memory values of one row of a relation.
//
// A Holder is a typed, optionally-empty cell named after a relation field.
// A Record groups holders in field-declaration order; that order is the
// contract row assembly relies on. Holders compare by value with Equal and
// Hash, and by identity with SameAs and Key. Value-based comparison changes
// as the holder is mutated, so maps must be keyed by Key (see Index).
package record
