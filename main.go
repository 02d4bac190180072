package main

import (
	"os"

	"github.com/turbolytics/nasr-loader/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
