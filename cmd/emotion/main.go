package main

import "github.com/teslashibe/go-emotion/cmd/emotion/commands"

func main() {
	commands.Execute()
}
