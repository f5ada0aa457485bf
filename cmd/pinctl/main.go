// Command pinctl is a terminal client for the pinboard API.
package main

import "github.com/sakif/pinboard/cmd/pinctl/commands"

func main() {
	commands.Execute()
}
