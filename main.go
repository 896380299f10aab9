package main

import "github.com/gaurav-prasanna/arxiv2md/cmd"

func main() {
	cmd.Execute()
}
