package main

import (
	"github.com/shipliyo/smsgate/cmd"
)

func main() {
	cmd.Execute()
}
