package payload

import (
	"encoding/base64"
	"errors"
	"testing"
)

func TestEncode(t *testing.T) {
	doc := []byte(`{
  "port": 9222,
  "wsPath": "camoufox",
  "proxy": {"server": "socks5://127.0.0.1:9050"}
}`)

	got, err := Encode(doc)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	raw, err := base64.StdEncoding.DecodeString(string(got))
	if err != nil {
		t.Fatalf("output is not base64: %v", err)
	}
	want := `{"port":9222,"wsPath":"camoufox","proxy":{"server":"socks5://127.0.0.1:9050"}}`
	if string(raw) != want {
		t.Errorf("decoded payload = %s, want %s", raw, want)
	}
}

func TestEncodeEmptyObject(t *testing.T) {
	got, err := Encode([]byte(`{}`))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if string(got) != "e30=" {
		t.Errorf("Encode({}) = %q, want %q", got, "e30=")
	}
}

func TestEncodeRejectsNonObjects(t *testing.T) {
	for _, in := range []string{`[1,2]`, `"text"`, `{"unterminated":`, ``} {
		if _, err := Encode([]byte(in)); !errors.Is(err, ErrInvalidDocument) {
			t.Errorf("Encode(%q) error = %v, want ErrInvalidDocument", in, err)
		}
	}
}
