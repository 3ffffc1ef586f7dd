package main

import (
	"unity-peek/cli"
)

func main() {
	cli.Start()
}
