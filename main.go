package main

import "github.com/negokart/negokart-cli/cmd"

func main() {
	cmd.Execute()
}
