package main

import "github.com/pocketledger/pocketledger-backend/internal/cli"

func main() {
	cli.Execute()
}
