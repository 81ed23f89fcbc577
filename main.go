package main

import "github.com/premtools/unpack/cmd"

func main() {
	cmd.Execute()
}
