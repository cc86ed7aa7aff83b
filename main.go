package main

import "github.com/cfdtools/gofvm/cmd"

func main() {
	cmd.Execute()
}
