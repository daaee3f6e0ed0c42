package main

import "github.com/masmgr/gitpace/cmd"

func main() {
	cmd.Run()
}
