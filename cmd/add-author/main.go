package main

import (
	"context"
	"fmt"
	stdLog "log"
	"os"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"github.com/Astemirdum/library-catalog/catalog/app"
	"github.com/Astemirdum/library-catalog/catalog/config"
)

func main() {
	if err := godotenv.Load(); err != nil {
		stdLog.Println("load envs from .env ", err)
	}
	cfg := config.NewConfig()

	err := app.AddAuthor(context.Background(), cfg, os.Args[1:], os.Stdout)
	switch {
	case err == nil:
		return
	case errors.Is(err, app.ErrUsage):
		fmt.Fprintln(os.Stderr, app.AddAuthorUsage)
	default:
		fmt.Fprintln(os.Stderr, "error creating author:", err)
	}
	os.Exit(1)
}
