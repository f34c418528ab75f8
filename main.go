package main

import "github.com/iksnae/targus/cmd"

func main() {
	cmd.Execute()
}
