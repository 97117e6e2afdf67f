package options

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Environment variables consulted for executable_path when neither the flag
// nor the config file sets it. The first non-empty one wins.
var executablePathEnv = []string{
	"CAMOUFOX_PY_EXECUTABLE_PATH",
	"CAMOUFOX_EXECUTABLE_PATH",
}

// Flags holds the command line values that shape the options document.
// Zero values mean "not given".
type Flags struct {
	ConfigFile string
	Set        []string

	Port           *int
	WSPath         string
	Headless       string
	ExecutablePath string

	GeoIP     string
	GeoIPAuto bool

	ProxyServer   string
	ProxyUsername string
	ProxyPassword string

	OS              []string
	Locale          []string
	Humanize        bool
	HumanizeMaxTime *float64
}

// Build assembles the options document: the config file first, then the
// individual flags, then the executable path fallbacks and finally the
// --set overrides in the order given.
func Build(flags Flags) ([]byte, error) {
	doc := []byte("{}")
	if flags.ConfigFile != "" {
		loaded, err := LoadFile(flags.ConfigFile)
		if err != nil {
			return nil, err
		}
		doc = loaded
	}

	b := &builder{doc: doc}

	if flags.Port != nil {
		b.set("port", *flags.Port)
	}
	if flags.WSPath != "" {
		b.set("ws_path", flags.WSPath)
	}

	if flags.Headless != "" {
		headless, err := ResolveHeadless(flags.Headless)
		if err != nil {
			return nil, err
		}
		b.set("headless", headless)
	}

	if geoip, ok := ResolveGeoIP(flags.GeoIP, flags.GeoIPAuto); ok {
		b.set("geoip", geoip)
	}

	proxy := map[string]string{}
	if flags.ProxyServer != "" {
		proxy["server"] = flags.ProxyServer
	}
	if flags.ProxyUsername != "" {
		proxy["username"] = flags.ProxyUsername
	}
	if flags.ProxyPassword != "" {
		proxy["password"] = flags.ProxyPassword
	}
	if len(proxy) > 0 {
		b.set("proxy", proxy)
	}

	if len(flags.OS) > 0 {
		b.set("os", oneOrMany(flags.OS))
	}
	if len(flags.Locale) > 0 {
		b.set("locale", oneOrMany(flags.Locale))
	}

	switch {
	case flags.HumanizeMaxTime != nil:
		b.set("humanize", *flags.HumanizeMaxTime)
	case flags.Humanize:
		b.set("humanize", true)
	}

	if flags.ExecutablePath != "" {
		b.set("executable_path", flags.ExecutablePath)
	} else if !gjson.GetBytes(b.doc, "executable_path").Exists() {
		for _, name := range executablePathEnv {
			if path := os.Getenv(name); path != "" {
				b.set("executable_path", path)
				break
			}
		}
	}

	if b.err != nil {
		return nil, b.err
	}

	for _, entry := range flags.Set {
		key, value, err := ParseSetArg(entry)
		if err != nil {
			return nil, err
		}
		if b.doc, err = SetPath(b.doc, key, value); err != nil {
			return nil, err
		}
	}

	return b.doc, nil
}

// ResolveHeadless maps --headless to its option value.
func ResolveHeadless(value string) (any, error) {
	switch strings.ToLower(value) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	case "virtual":
		return "virtual", nil
	}
	return nil, fmt.Errorf("invalid --headless value: %s", value)
}

// ResolveGeoIP maps --geoip and --geoip-auto to an option value. "auto"
// means true; anything that is not a boolean is taken as an IP address.
func ResolveGeoIP(value string, auto bool) (any, bool) {
	if auto {
		return true, true
	}
	if value == "" {
		return nil, false
	}
	switch strings.ToLower(value) {
	case "true", "auto":
		return true, true
	case "false":
		return false, true
	}
	return value, true
}

func oneOrMany(values []string) any {
	if len(values) == 1 {
		return values[0]
	}
	return values
}

// builder sets top-level keys and keeps the first error.
type builder struct {
	doc []byte
	err error
}

func (b *builder) set(key string, value any) {
	if b.err != nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		b.err = fmt.Errorf("encode %s: %w", key, err)
		return
	}
	if b.doc, err = sjson.SetRawBytes(b.doc, escapeComponent(key), raw); err != nil {
		b.err = fmt.Errorf("set %s: %w", key, err)
	}
}
