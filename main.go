package main

import "github.com/frahmantamala/yardguard/cmd"

func main() {
	cmd.Execute()
}
