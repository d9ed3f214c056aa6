package main

import (
	"github.com/wordduel/wordduel/internal/cli"
)

func main() {
	cli.Execute()
}
