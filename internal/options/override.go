package options

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// ParseSetArg splits a KEY=VALUE override. The value is returned as raw JSON.
func ParseSetArg(entry string) (string, []byte, error) {
	key, raw, ok := strings.Cut(entry, "=")
	if !ok {
		return "", nil, fmt.Errorf("invalid --set value '%s': expected KEY=VALUE", entry)
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", nil, fmt.Errorf("invalid --set value '%s': empty key", entry)
	}
	return key, ParseScalar(raw), nil
}

// ParseScalar interprets an override value: true, false and null in any
// case, then any JSON literal, otherwise the text itself as a string.
func ParseScalar(raw string) []byte {
	switch strings.ToLower(raw) {
	case "true":
		return []byte("true")
	case "false":
		return []byte("false")
	case "null":
		return []byte("null")
	}
	if gjson.Valid(raw) {
		return []byte(strings.TrimSpace(raw))
	}
	quoted, _ := json.Marshal(raw)
	return quoted
}

// SetPath sets a dotted key to a raw JSON value, creating intermediate
// objects and replacing any intermediate that is not an object.
func SetPath(doc []byte, dottedKey string, value []byte) ([]byte, error) {
	parts := strings.Split(dottedKey, ".")
	escaped := make([]string, len(parts))
	for i, part := range parts {
		escaped[i] = escapeComponent(part)
	}

	var err error
	for i := 1; i < len(parts); i++ {
		prefix := strings.Join(escaped[:i], ".")
		if gjson.GetBytes(doc, prefix).IsObject() {
			continue
		}
		if doc, err = sjson.SetRawBytes(doc, prefix, []byte("{}")); err != nil {
			return nil, fmt.Errorf("set %s: %w", dottedKey, err)
		}
	}

	if doc, err = sjson.SetRawBytes(doc, strings.Join(escaped, "."), value); err != nil {
		return nil, fmt.Errorf("set %s: %w", dottedKey, err)
	}
	return doc, nil
}

// pathSpecials are the characters gjson/sjson interpret inside a path.
const pathSpecials = `\.*?|#@`

// escapeComponent makes a key safe to use as one gjson/sjson path component.
func escapeComponent(key string) string {
	if !strings.ContainsAny(key, pathSpecials) {
		return key
	}
	var b strings.Builder
	for _, r := range key {
		if strings.ContainsRune(pathSpecials, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
