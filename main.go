package main

import "github.com/notargets/goeit/cmd"

func main() {
	cmd.Execute()
}
