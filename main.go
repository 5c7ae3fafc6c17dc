package main

import "github.com/delving/itemnav/cmd"

func main() {
	cmd.Execute()
}
