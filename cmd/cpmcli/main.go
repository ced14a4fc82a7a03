package main

import (
	"github.com/jbcacc/cpm-backend/internal/cli"
)

func main() {
	cli.Execute()
}
