package main

import (
	"log"
	"os"
)

func main() {
	err := run(os.Args[1:], os.Stdout)
	if err != nil {
		log.Fatalf("%v", err)
	}
}
