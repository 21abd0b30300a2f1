//go:build !cgo

package audio

import "errors"

const cgoEnabled = false

var errCGORequired = errors.New(`the malgo and oto audio backends require CGO support.

This error occurs when audiotest is built with CGO_ENABLED=0.

To fix this issue:
1. Ensure CGO_ENABLED=1 (this is the default for native builds)
2. Install a C compiler:
   - Linux: sudo apt-get install build-essential
   - macOS: xcode-select --install
   - Windows: Install MinGW or Visual Studio Build Tools
3. Then run: go install audiotest.click/cmd/audiotest

Alternatively use --backend system_command or --backend null.`)

func newMalgoBackend() (Backend, error) {
	return nil, errCGORequired
}

func newOtoBackend() (Backend, error) {
	return nil, errCGORequired
}
