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

	log := logger.New("fixslugs")

	cwd, err := os.Getwd()
	if err != nil {
		log.Printf("resolve working directory: %v", err)
		os.Exit(1)
	}
	resolved, err := maintain.SafePath(*path, cwd)
	if err != nil {
		log.Printf("refusing data path: %v", err)
		os.Exit(1)
	}

	if err := maintain.FixSlugs(resolved, log.Printf); err != nil {
		log.Printf("fix slugs failed: %v", err)
		os.Exit(1)
	}
}
