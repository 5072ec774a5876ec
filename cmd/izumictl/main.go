package main

import "github.com/izumilab/groundwater-viewer/cmd/izumictl/commands"

func main() {
	commands.Execute()
}
