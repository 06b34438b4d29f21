package main

import (
	"runtime/debug"

	"github.com/entrascope/entrascope/cmd"
)

func main() {
	debug.SetMaxThreads(20000)
	cmd.Execute()
}
