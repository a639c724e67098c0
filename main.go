package main

import "delivery-tracker/cmd"

func main() {
	cmd.Execute()
}
