// Command wirevectors regenerates the wire conformance vectors under
// testdata/conformance/wire/v1. Run it from the repository root after any
// intentional change to the frame format.
package main

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"xdao.co/carrier/wire"
)

func frame(msg wire.Marshaler) []byte {
	var buf bytes.Buffer
	w := wire.NewWriter(&buf, 0)
	if err := w.Write(msg); err != nil {
		panic(err)
	}
	if err := w.Flush(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func main() {
	root := filepath.Join("testdata", "conformance", "wire", "v1")
	if err := os.MkdirAll(root, 0o755); err != nil {
		panic(err)
	}

	vectors := map[string][]byte{
		"request_1.frame.hex": frame(&wire.NodeRequest{
			RequestID:    []byte{0x01},
			DistanceList: []byte{0x02, 0x03},
		}),
		"request_empty.frame.hex": frame(&wire.NodeRequest{}),
		"response_1.frame.hex": frame(&wire.NodeResponse{
			RequestID: []byte{0x01},
		}),
	}

	for name, b := range vectors {
		path := filepath.Join(root, name)
		if err := os.WriteFile(path, []byte(hex.EncodeToString(b)+"\n"), 0o644); err != nil {
			panic(err)
		}
		fmt.Println(path)
	}
}
