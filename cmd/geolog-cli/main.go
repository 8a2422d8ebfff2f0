package main

import "geolog/cmd/geolog-cli/cmd"

func main() {
	cmd.Execute()
}
