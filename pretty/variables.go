package pretty

import (
	"os"

	"github.com/mattn/go-isatty"

	"github.com/Bitergia/grimoirelab-metrics/common"
)

var (
	Colorless   bool
	Interactive bool
	White       string
	Grey        string
	Red         string
	Green       string
	Yellow      string
	Cyan        string
	Bold        string
	Faint       string
	Reset       string
)

// Setup detects terminal capabilities and fills in the ANSI escape
// variables. Respects NO_COLOR and missing TERM.
func Setup() {
	stdout := isatty.IsTerminal(os.Stdout.Fd())
	stderr := isatty.IsTerminal(os.Stderr.Fd())

	if os.Getenv("NO_COLOR") != "" {
		Colorless = true
	}
	if os.Getenv("TERM") == "" {
		Colorless = true
	}

	Interactive = stdout && stderr

	if Interactive && !Colorless {
		White = csi("97m")
		Grey = csi("90m")
		Red = csi("91m")
		Green = csi("92m")
		Yellow = csi("93m")
		Cyan = csi("96m")
		Bold = csi("1m")
		Faint = csi("2m")
		Reset = csi("0m")
	}

	common.Trace("Interactive mode: %v; colors enabled: %v", Interactive, !Colorless)
}

func csi(callsign string) string {
	return "\033[" + callsign
}
