package main

import "github.com/Poorani-S/pettycash-backend/cmd"

func main() {
	cmd.Execute()
}
