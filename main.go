package main

import "github.com/taskdesk/apiserver/cmd"

func main() {
	cmd.Execute()
}
