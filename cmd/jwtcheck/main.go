package main

import "github.com/dropDatabas3/jwtvalidator/cmd/jwtcheck/cmd"

func main() {
	cmd.Execute()
}
