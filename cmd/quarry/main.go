package main

import "github.com/ridge/quarry/cli"

func main() {
	cli.Main()
}
