package main

import "github.com/KaramelBytes/dtypediet/cmd"

func main() {
	cmd.Execute()
}
