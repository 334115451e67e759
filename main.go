package main

import (
	"os"
	"runtime/debug"

	"github.com/mezonai/poldrop/cmd"
	"github.com/mezonai/poldrop/logx"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			_ = logx.Errorf("POLDROP CRASHED: %v\n%s", r, debug.Stack())
			os.Exit(1)
		}
	}()

	cmd.Execute()
}
