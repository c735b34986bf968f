package main

import "github.com/ValentinKolb/zkwire/cmd"

func main() {
	cmd.Execute()
}
