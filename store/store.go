// Package store defines content-addressed storage for pinned toolchain
// artifacts. Objects are immutable and keyed by CIDv1 (raw + sha2-256), so a
// cached artifact can always be re-verified against its pin.
package store

import "github.com/ipfs/go-cid"

// Store is a minimal content-addressed artifact store.
//
// Contract:
// - Put MUST be idempotent.
// - Stored objects MUST be immutable.
// - CIDs MUST be derived from the bytes written.
// - Get MUST return ErrNotFound when the CID is absent and MUST re-verify
//   the bytes against the CID before returning them.
type Store interface {
	Put(data []byte) (cid.Cid, error)
	Get(id cid.Cid) ([]byte, error)
	Has(id cid.Cid) bool
}
