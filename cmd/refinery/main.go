package main

import (
	"github.com/stateofclarity/refinery/internal/cli"
)

func main() {
	cli.Execute()
}
