package main

import "github.com/jfmyers9/albumlog/cmd"

func main() {
	cmd.Execute()
}
