package main

import (
	"github.com/jashanpreetsinghdod/bankroom/internal/cli"
)

func main() {
	cli.Execute()
}
