package main

import "github.com/KaramelBytes/cleaner-cli/cmd"

func main() {
	cmd.Execute()
}
