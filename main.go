package main

import "github.com/kamusis/courserec/cmd"

func main() {
	cmd.Execute()
}
