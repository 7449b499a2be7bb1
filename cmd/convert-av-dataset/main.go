// Copyright © 2018 One Concern

package main

import (
	"github.com/DANS-KNAW/dd-poc-convert-av-dataset/cmd/convert-av-dataset/cmd"
)

func main() {
	cmd.Execute()
}
