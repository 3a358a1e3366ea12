package main

import (
	"fmt"
	"os"
)

var (
	// Version 构建版本，通过 -ldflags 注入
	Version = "dev"
	// Commit 构建提交，通过 -ldflags 注入
	Commit string
)

func main() {
	if err := atmMain(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
