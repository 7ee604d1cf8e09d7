package main

import "github.com/javierggt/pyglidein/cmd"

func main() {
	cmd.Execute()
}
