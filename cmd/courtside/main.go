package main

import "github.com/courtside-hq/courtside/cmd/courtside/cmd"

func main() {
	cmd.Execute()
}
