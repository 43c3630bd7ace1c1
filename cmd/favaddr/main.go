// Command favaddr runs the favorite-address HTTP service.
//
// Configuration is read from flags, environment variables, an optional
// .env file and an optional JSON file; see internal/config.
package main

import (
	"github.com/patric-chuzhbe/favaddr/internal/app"
)

func main() {
	application, err := app.New()
	if err != nil {
		panic(err)
	}
	defer application.Close()

	if err := application.Run(); err != nil {
		panic(err)
	}
}
