// cmd/kmertax/main.go
package main

import (
	"kmertax/internal/app"
	"kmertax/internal/appshell"
)

func main() {
	appshell.Main(app.RunContext)
}
