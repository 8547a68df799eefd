package common

import "fmt"

// ExitCode is panicked out of deeply nested command code and converted
// into a process exit by the ExitProtection handler in main.
type ExitCode struct {
	Code    int
	Message string
}

func (it ExitCode) ShowMessage() {
	if len(it.Message) > 0 {
		Log("%s", it.Message)
	}
}

func Exit(code int, format string, details ...interface{}) {
	panic(ExitCode{
		Code:    code,
		Message: fmt.Sprintf(format, details...),
	})
}
