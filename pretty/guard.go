package pretty

import (
	"fmt"

	"github.com/Bitergia/grimoirelab-metrics/common"
)

// Guard exits the process with given code and message unless the
// condition holds. The exit travels as a panic so that deferred
// cleanups still run on the way out.
func Guard(condition bool, code int, format string, rest ...interface{}) {
	if !condition {
		message := fmt.Sprintf(format, rest...)
		common.Exit(code, "%s%s%s", Red, message, Reset)
	}
}

func Ok() error {
	common.Log("%sOK.%s", Green, Reset)
	return nil
}

func Warning(format string, rest ...interface{}) {
	common.Log("%sWarning: %s%s", Yellow, fmt.Sprintf(format, rest...), Reset)
}

func Highlight(format string, rest ...interface{}) {
	common.Log("%s%s%s", Cyan, fmt.Sprintf(format, rest...), Reset)
}
