package main

import "github.com/gridplan/gridplan/cmd"

func main() {
	cmd.Execute()
}
