package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/h-wang94/terraforming-mars/internal/di"
	"github.com/h-wang94/terraforming-mars/internal/structures"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	debug := flag.Bool("debug", false, "mirror application logs to stderr")
	flag.Parse()

	flags := &structures.CliFlags{
		ConfigPath: *configPath,
		DebugMode:  *debug,
	}

	if _, err := di.InitApp(flags); err != nil {
		fmt.Fprintf(os.Stderr, "gamestored: %s\n", err)
		os.Exit(1)
	}
}
