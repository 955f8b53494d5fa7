// Package testing moves the test process to the repository root so that
// relative paths (logs/, sqlite files, .env) resolve the same way they do
// for cmd/server. Import it for side effects only:
//
//	import _ "liyu1981.xyz/iot-access-telemetry/pkg/testing"
package testing

import (
	"os"
	"path"
	"runtime"
)

func init() {
	_, filename, _, _ := runtime.Caller(0)
	root := path.Join(path.Dir(filename), "..", "..")
	if err := os.Chdir(root); err != nil {
		panic(err)
	}
}
