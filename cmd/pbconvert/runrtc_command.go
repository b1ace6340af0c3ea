package main

import (
	"fmt"

	"github.com/jrharting/pbconvert/tasks"
)

func runRtcCmd(registry *tasks.Registry, args []string) {
	if len(args) != 1 {
		fmt.Print(
			"run-rtc - Run a resolved tool contract emitted by a workflow engine\n\n" +
				"Usage:\n" +
				"  pbconvert run-rtc resolved-tool-contract.json\n")
		errExit("\nERROR: must have exactly one contract file")
	}
	rtc, err := tasks.LoadResolvedContext(args[0])
	if err != nil {
		errExit("ERROR: " + err.Error())
	}
	dispatch(registry, rtc)
}
