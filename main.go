package main

import (
	"osrsloottracker.dev/plugin-core/cmd/app"
)

func main() {
	app.Run()
}
