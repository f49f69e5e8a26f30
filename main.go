package main

import "github.com/dmarquez/inventory-management/cmd"

func main() {
	cmd.Execute()
}
