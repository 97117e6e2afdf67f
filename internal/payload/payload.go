// Package payload frames the launch options handed to the server process.
//
// The child reads its whole stdin, base64-decodes it and parses the result
// as JSON. Encode produces exactly that: compact JSON, standard base64.
package payload

import (
	"encoding/base64"
	"errors"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// ErrInvalidDocument is returned for input that is not a JSON object.
var ErrInvalidDocument = errors.New("payload must be a JSON object")

// Encode compacts a JSON object document and base64-encodes it.
func Encode(doc []byte) ([]byte, error) {
	if !gjson.ValidBytes(doc) || !gjson.ParseBytes(doc).IsObject() {
		return nil, ErrInvalidDocument
	}
	compact := pretty.Ugly(doc)

	out := make([]byte, base64.StdEncoding.EncodedLen(len(compact)))
	base64.StdEncoding.Encode(out, compact)
	return out, nil
}
