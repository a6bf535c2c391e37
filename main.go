package main

import (
	"log"

	"github.com/travis-burmaster/bmasterai/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
