// @title Eventrio API
// @version 1.0
// @description Event management, public registration and attendee reminders.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT.
package main

import (
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	_ "eventrio/docs"
)

func main() {
	app := &cli.App{
		Name:  "eventrio",
		Usage: "Event management API with attendee reminders.",
		Commands: []*cli.Command{
			serveCommand(),
			remindCommand(),
			migrateCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("eventrio failed", "error", err)
		os.Exit(1)
	}
}
