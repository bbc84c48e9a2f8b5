package main

import "github.com/itsmostafa/dataexplore/cmd"

func main() {
	cmd.Execute()
}
