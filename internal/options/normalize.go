package options

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// Normalize prepares an options document for the server: top-level null
// values are dropped and top-level keys become camelCase. Nested objects are
// passed through untouched.
func Normalize(doc []byte) ([]byte, error) {
	if !gjson.ValidBytes(doc) || !gjson.ParseBytes(doc).IsObject() {
		return nil, ErrNotMapping
	}

	out := []byte("{}")
	var err error
	gjson.ParseBytes(doc).ForEach(func(key, value gjson.Result) bool {
		if value.Type == gjson.Null {
			return true
		}
		out, err = sjson.SetRawBytes(out, escapeComponent(CamelCase(key.String())), []byte(value.Raw))
		return err == nil
	})
	if err != nil {
		return nil, fmt.Errorf("normalize options: %w", err)
	}
	return out, nil
}

// CamelCase converts a snake_case key: "ws_path" becomes "wsPath".
// Keys shorter than two characters are returned unchanged.
func CamelCase(key string) string {
	if utf8.RuneCountInString(key) < 2 {
		return key
	}
	var b strings.Builder
	for _, word := range strings.Split(strings.ToLower(key), "_") {
		if word == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(word)
		b.WriteRune(unicode.ToUpper(r))
		b.WriteString(word[size:])
	}
	camel := b.String()
	if camel == "" {
		return camel
	}
	r, size := utf8.DecodeRuneInString(camel)
	return string(unicode.ToLower(r)) + camel[size:]
}

// Endpoint returns the websocket endpoint implied by the port and ws_path
// options, or false when no port is configured.
func Endpoint(doc []byte) (string, bool) {
	port := gjson.GetBytes(doc, "port")
	if !port.Exists() || port.Type == gjson.Null {
		return "", false
	}
	wsPath := gjson.GetBytes(doc, "ws_path").String()
	return fmt.Sprintf("ws://127.0.0.1:%s/%s", port.String(), wsPath), true
}

// Pretty renders an options document for humans.
func Pretty(doc []byte) []byte {
	return pretty.PrettyOptions(doc, &pretty.Options{Width: 80, Indent: "  "})
}
