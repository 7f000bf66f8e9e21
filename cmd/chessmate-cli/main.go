package main

import (
	"github.com/Raunaq22/ChessMate-sub001/internal/cli"
)

func main() {
	cli.Execute()
}
