package main

import "github.com/lepinkainen/reelbox/cmd"

var execute = cmd.Execute

func main() {
	execute()
}
