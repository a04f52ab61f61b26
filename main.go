package main

import "github.com/secintel/kevfeed/internal/cmd"

func main() {
	cmd.Execute()
}
