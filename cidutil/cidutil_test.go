package cidutil

import (
	"testing"

	"github.com/ipfs/go-cid"
)

func TestCIDv1RawSHA256Stable(t *testing.T) {
	// Known vector: CIDv1, raw codec, sha2-256 of "hello".
	const want = "bafkreibm6jg3ux5qumhcn2b3flc3tyu6dmlb4xa7u5bf44yegnrjhc4yeq"
	got := CIDv1RawSHA256([]byte("hello"))
	if got != want {
		t.Fatalf("CIDv1RawSHA256(hello) = %q, want %q", got, want)
	}
}

func TestMatches(t *testing.T) {
	data := []byte("toolchain artifact bytes")
	id, err := CIDv1RawSHA256CID(data)
	if err != nil {
		t.Fatalf("CIDv1RawSHA256CID: %v", err)
	}
	if !Matches(id, data) {
		t.Fatal("Matches rejected data it was derived from")
	}
	if Matches(id, []byte("tampered")) {
		t.Fatal("Matches accepted tampered data")
	}
	other, err := cid.Decode(CIDv1RawSHA256([]byte("other")))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if Matches(other, data) {
		t.Fatal("Matches accepted data under the wrong cid")
	}
}
