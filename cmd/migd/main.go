package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

func init() {
	// a missing .env file is normal
	_ = godotenv.Load()
}

func main() {
	if err := NewRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
