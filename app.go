package main

import "github.com/masmgr/declmine/cmd"

func main() {
	cmd.Run()
}
