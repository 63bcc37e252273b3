package main

import (
	"notification-dispatch/app"
	"notification-dispatch/pkg/observability"
)

func main() {
	observability.StartProfiling("notification-dispatch")
	app.Run()
}
