package main

import "report_explorer/internal/cli"

func main() {
	cli.Execute()
}
