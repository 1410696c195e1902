package main

import (
	"TingFM/cmd"
)

func main() {
	cmd.Execute()
}
