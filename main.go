package main

import "github.com/slfuchs/4C-sub001/cmd"

func main() {
	cmd.Execute()
}
