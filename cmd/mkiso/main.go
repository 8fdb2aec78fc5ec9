package main

import "github.com/LINBIT/mkiso/cmd"

func main() {
	cmd.Execute()
}
