package main

import "github.com/KaramelBytes/tuyere-cli/cmd"

func main() {
	cmd.Execute()
}
