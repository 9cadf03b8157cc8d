package main

import (
	"os"

	"github.com/megharajeev28/resume-matcher/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
