package main

import (
	"os"

	"github.com/careerlink/job-matcher/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
