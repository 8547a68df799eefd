package common

var (
	debugFlag  bool
	traceFlag  bool
	silentFlag bool

	// LogLinenumbers prefixes log output with running line numbers.
	LogLinenumbers bool
)

// DefineVerbosity sets process-wide verbosity flags. Trace implies debug,
// and any verbosity wins over silence.
func DefineVerbosity(silent, debug, trace bool) {
	silentFlag = silent && !debug && !trace
	debugFlag = debug || trace
	traceFlag = trace
}

func DebugFlag() bool {
	return debugFlag
}

func TraceFlag() bool {
	return traceFlag
}

func Silent() bool {
	return silentFlag
}
