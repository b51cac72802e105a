// Package codec provides the self-describing binary encoding used for both
// page slot arrays and the catalog blob.
//
// EDUCATIONAL NOTES:
// ------------------
// Both a page's slot vector and the catalog's table-metadata blob need a
// stable, self-describing binary encoding: one a decoder can read back
// without being told the shape ahead of time. We use msgpack
// (vmihailenco/msgpack/v5) for both rather than hand-writing field-by-field
// encoding/binary: it is compact, self-describing, and a single
// Marshal/Unmarshal call covers any shape either caller passes it.
package codec

import "github.com/vmihailenco/msgpack/v5"

// Marshal encodes v into its self-describing binary form.
func Marshal(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

// Unmarshal decodes data produced by Marshal into v.
func Unmarshal(data []byte, v any) error {
	return msgpack.Unmarshal(data, v)
}
