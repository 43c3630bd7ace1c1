package main

import (
	"errors"
	"log"
	"os"
)

func run() error {
	return errors.New("boom")
}

func helper() {
	os.Exit(3)
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err) // want "avoid calling log.Fatal in main.main"
	}

	defer func() {
		os.Exit(2)
	}()

	log.Println("done")
	os.Exit(1) // want "avoid calling os.Exit in main.main"
}
