// cmd/reelfolio/main.go
package main

import (
	"context"
	"log"

	"github.com/dalemusser/reelfolio/internal/app/bootstrap"
	"github.com/dalemusser/waffle/app"
)

func main() {
	// Run the WAFFLE lifecycle with this app's hooks.
	if err := app.Run(context.Background(), bootstrap.Hooks); err != nil {
		log.Fatal(err)
	}
}
