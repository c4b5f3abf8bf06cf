package main

import (
	"os"

	"github.com/redgush/flycatcher/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
