package driver

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// fakeNode puts an executable named node on PATH.
func fakeNode(t *testing.T) string {
	t.Helper()
	bin := t.TempDir()
	node := filepath.Join(bin, "node")
	if err := os.WriteFile(node, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", bin)
	return node
}

func writeScript(t *testing.T) string {
	t.Helper()
	script := filepath.Join(t.TempDir(), "launchServer.js")
	if err := os.WriteFile(script, []byte("// launch\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return script
}

func TestResolveDefaults(t *testing.T) {
	node := fakeNode(t)
	script := writeScript(t)

	d, err := Resolve(Config{Script: script})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if d.Node != node {
		t.Errorf("Node = %q, want %q", d.Node, node)
	}
	if d.Script != script {
		t.Errorf("Script = %q, want %q", d.Script, script)
	}
	if d.Dir != filepath.Dir(script) {
		t.Errorf("Dir = %q, want %q", d.Dir, filepath.Dir(script))
	}
}

func TestResolveExplicit(t *testing.T) {
	node := fakeNode(t)
	t.Setenv("PATH", "")
	script := writeScript(t)
	dir := t.TempDir()

	d, err := Resolve(Config{Node: node, Script: script, Dir: dir})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if d.Node != node || d.Dir != dir {
		t.Errorf("unexpected driver: %+v", d)
	}
}

func TestResolveUnavailable(t *testing.T) {
	fakeNode(t)
	script := writeScript(t)

	tests := []struct {
		name string
		cfg  Config
	}{
		{"no script", Config{}},
		{"missing script", Config{Script: filepath.Join(t.TempDir(), "missing.js")}},
		{"script is dir", Config{Script: t.TempDir()}},
		{"missing node", Config{Node: "no-such-node-binary", Script: script}},
		{"bad dir", Config{Script: script, Dir: filepath.Join(t.TempDir(), "missing")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(tt.cfg)
			if !errors.Is(err, ErrDriverUnavailable) {
				t.Errorf("err = %v, want ErrDriverUnavailable", err)
			}
		})
	}
}

func TestLaunchSpec(t *testing.T) {
	d := Driver{Node: "/usr/bin/node", Script: "/opt/driver/launch.js", Dir: "/opt/driver"}
	spec := d.LaunchSpec([]byte("e30="))

	if spec.Path != d.Node || spec.Dir != d.Dir || string(spec.Payload) != "e30=" {
		t.Errorf("unexpected spec: %+v", spec)
	}
	if !reflect.DeepEqual(spec.Args, []string{d.Script}) {
		t.Errorf("Args = %v", spec.Args)
	}
}
