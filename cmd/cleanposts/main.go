package main

import (
	"flag"
	"os"

	"devtomirror/internal/maintain"
	"devtomirror/pkg/logger"
)

func main() {
	path := flag.String("data", "posts_data.json", "path to the posts cache file")
	flag.Parse()

	log := logger.New("cleanposts")
	if err := maintain.Clean(*path, log.Printf); err != nil {
		log.Printf("clean failed: %v", err)
		os.Exit(1)
	}
}
