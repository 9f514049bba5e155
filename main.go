package main

import "github.com/Ngechemoris1/payup/cmd"

func main() {
	cmd.Execute()
}
