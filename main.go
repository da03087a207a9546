package main

import (
	"log"

	"github.com/Dm-vYzion/StoryForge/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
