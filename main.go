package main

import "github.com/telecontrol-mt/calendario/cmd"

func main() {
	cmd.Execute()
}
