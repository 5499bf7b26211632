// Package msgpackenc pre-encodes task headers as msgpack for the runtime.
// It wraps github.com/vmihailenco/msgpack/v5, the msgpack dependency several example
// repos in the corpus carry for this exact encode-once-at-build-time shape
// (zoobzio-pipz's example/demo/benchmark modules, GoCodeAlone-workflow,
// smilemakc-mbflow).
package msgpackenc

import (
	"bytes"

	"github.com/vmihailenco/msgpack/v5"
)

// Header is a single key/value pair in declaration order.
type Header struct {
	Key   string
	Value string
}

// EncodeHeaders writes a msgpack map of size len(headers) to a growable
// buffer, emitting each header's key string then value string in
// declaration order. An empty header set yields an empty buffer rather
// than an empty msgpack map, matching the "If headers are empty,
// encoded_msgpack is an empty buffer" rule.
func EncodeHeaders(headers []Header) []byte {
	if len(headers) == 0 {
		return []byte{}
	}

	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	if err := enc.EncodeMapLen(len(headers)); err != nil {
		return []byte{}
	}
	for _, h := range headers {
		if err := enc.EncodeString(h.Key); err != nil {
			return []byte{}
		}
		if err := enc.EncodeString(h.Value); err != nil {
			return []byte{}
		}
	}
	return buf.Bytes()
}

// DecodeHeaders reverses EncodeHeaders, used by tests to assert that
// decoding encoded_msgpack yields the same key/value pairs in order.
func DecodeHeaders(encoded []byte) ([]Header, error) {
	if len(encoded) == 0 {
		return nil, nil
	}
	dec := msgpack.NewDecoder(bytes.NewReader(encoded))
	n, err := dec.DecodeMapLen()
	if err != nil {
		return nil, err
	}
	headers := make([]Header, 0, n)
	for i := 0; i < n; i++ {
		key, err := dec.DecodeString()
		if err != nil {
			return nil, err
		}
		value, err := dec.DecodeString()
		if err != nil {
			return nil, err
		}
		headers = append(headers, Header{Key: key, Value: value})
	}
	return headers, nil
}
