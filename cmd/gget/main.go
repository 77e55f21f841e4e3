package main

import "gget/internal/cli"

func main() {
	cli.Execute()
}
