package main

import "github.com/disctools/go-wiidisc/cmd"

func main() {
	cmd.Execute()
}
