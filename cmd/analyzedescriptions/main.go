package main

import (
	"flag"

	"devtomirror/internal/maintain"
	"devtomirror/pkg/logger"
)

func main() {
	path := flag.String("data", "posts_data.json", "path to the posts cache file")
	flag.Parse()

	log := logger.New("analyzedescriptions")
	long, missing := maintain.AnalyzeDescriptions(*path)

	for _, issue := range long {
		log.Printf("%s: %d chars (%s) %s", issue.Title, issue.Length, issue.Status, issue.Link)
	}
	for _, m := range missing {
		if m.Suggested != "" {
			log.Printf("%s: missing description, suggestion: %q", m.Title, m.Suggested)
		} else {
			log.Printf("%s: missing description", m.Title)
		}
	}
	log.Printf("summary: %d over limit, %d missing", len(long), len(missing))
}
