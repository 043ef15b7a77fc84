package main

import "github.com/pglens/pglens/cmd"

func main() {
	cmd.Execute()
}
