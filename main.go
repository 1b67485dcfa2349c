package main

import (
	"os"

	"github.com/bopopescu/openlava-web/cmd"
)

func main() {
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cmd.Execute()
}
