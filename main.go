/*
Copyright © 2025 tieubaoca
*/
package main

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/tieubaoca/pdfqa-be/cmd"
)

func main() {
	cmd.Execute()
}

func init() {
	// A missing .env is fine; the environment may already be set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic("Error loading .env file: " + err.Error())
	}
}
