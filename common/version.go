package common

import (
	"fmt"
	"runtime"
)

const Version = `0.3.1`

func UserAgent() string {
	return fmt.Sprintf("sbom-metrics/%s (%s %s)", Version, runtime.GOOS, runtime.GOARCH)
}
