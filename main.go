package main

import "github.com/aitechneut/autovandezaakofprive/internal/cmd"

func main() {
	cmd.Execute()
}
