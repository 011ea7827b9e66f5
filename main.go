package main

import "taskdeck/internal/app"

func main() {
	app.Run()
}
