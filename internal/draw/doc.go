// Package draw selects prizes and records wins on top of the ledger.
//
// The Service serializes every write behind one mutex so that a single
// process never interleaves two draws. Whether a won prize leaves the
// random pool is a Policy choice; by default it stays drawable.
package draw
