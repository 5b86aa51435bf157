package main

import (
	"github.com/aula-labs/aularag/internal/adapters/driving/cli"
)

func main() {
	cli.Execute()
}
