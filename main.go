package main

import (
	"os"

	"github.com/Amitav-Krishna/dynamic-media-kits/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
