package main

import "github.com/MyCarrier-DevOps/go-gitversion/cmd"

func main() {
	cmd.Execute()
}
