package main

import (
	"github.com/priyxstudio/pub/cmd"
)

func main() {
	cmd.Execute()
}
