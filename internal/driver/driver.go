// Package driver locates the Node.js runtime and the launch script that
// starts the websocket server.
package driver

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/smazurov/camoufox-launcher/internal/process"
)

// DefaultNode is looked up on PATH when no node binary is configured.
const DefaultNode = "node"

// ErrDriverUnavailable is returned when the runtime or the launch script
// cannot be found.
var ErrDriverUnavailable = errors.New("driver unavailable")

// Config names the driver pieces; empty fields use defaults.
type Config struct {
	Node   string // node binary, path or name on PATH
	Script string // launch script, required
	Dir    string // working directory, defaults to the script's directory
}

// Driver is a resolved runtime, script and working directory.
type Driver struct {
	Node   string
	Script string
	Dir    string
}

// Resolve checks that every piece of the driver exists and returns
// absolute paths.
func Resolve(cfg Config) (Driver, error) {
	if cfg.Script == "" {
		return Driver{}, fmt.Errorf("%w: no launch script configured", ErrDriverUnavailable)
	}
	script, err := filepath.Abs(cfg.Script)
	if err != nil {
		return Driver{}, fmt.Errorf("%w: %v", ErrDriverUnavailable, err)
	}
	info, err := os.Stat(script)
	if err != nil {
		return Driver{}, fmt.Errorf("%w: launch script: %v", ErrDriverUnavailable, err)
	}
	if info.IsDir() {
		return Driver{}, fmt.Errorf("%w: launch script %s is a directory", ErrDriverUnavailable, script)
	}

	name := cfg.Node
	if name == "" {
		name = DefaultNode
	}
	node, err := exec.LookPath(name)
	if err != nil {
		return Driver{}, fmt.Errorf("%w: node runtime: %v", ErrDriverUnavailable, err)
	}
	if node, err = filepath.Abs(node); err != nil {
		return Driver{}, fmt.Errorf("%w: %v", ErrDriverUnavailable, err)
	}

	dir := cfg.Dir
	if dir == "" {
		dir = filepath.Dir(script)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return Driver{}, fmt.Errorf("%w: working directory %s is not a directory", ErrDriverUnavailable, dir)
	}

	return Driver{Node: node, Script: script, Dir: dir}, nil
}

// LaunchSpec describes how to start this driver with the given payload.
func (d Driver) LaunchSpec(payload []byte) process.LaunchSpec {
	return process.LaunchSpec{
		Path:    d.Node,
		Args:    []string{d.Script},
		Dir:     d.Dir,
		Payload: payload,
	}
}
