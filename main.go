package main

import (
	"os"

	"github.com/Bitergia/grimoirelab-metrics/cmd"
	"github.com/Bitergia/grimoirelab-metrics/common"
)

// ExitProtection converts ExitCode panics from deep inside commands
// into clean process exits, flushing pending log lines first.
func ExitProtection() {
	status := recover()
	if status != nil {
		exit, ok := status.(common.ExitCode)
		if ok {
			exit.ShowMessage()
			common.WaitLogs()
			os.Exit(exit.Code)
		}
		common.WaitLogs()
		panic(status)
	}
	common.WaitLogs()
}

func main() {
	defer ExitProtection()
	cmd.Execute()
}
