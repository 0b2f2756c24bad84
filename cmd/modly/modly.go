package main

import (
	"github.com/viant/modly"
	"github.com/viant/modly/cmd"
	"log"
	"os"
)

func main() {
	err := cmd.RunApp(modly.Version, os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
}
