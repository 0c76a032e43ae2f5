package main

import "github.com/jfmyers9/needledrop/cmd"

func main() {
	cmd.Execute()
}
