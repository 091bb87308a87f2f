// Package keys provides signing-key helpers for devshell manifests.
//
// Stable:
//   - Pure, deterministic primitives for signer-key formatting and role-seed
//     derivation.
//
// Experimental:
//   - Filesystem-backed key storage (KeyStore and related functions). These
//     are local-first utilities, not a long-term contract.
package keys
