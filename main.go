package main

import "github.com/blitz-web/blitz/cmd"

func main() {
	cmd.Execute()
}
