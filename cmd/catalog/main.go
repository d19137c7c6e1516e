package main

import (
	"flag"
	stdLog "log"
	"time"

	"github.com/joho/godotenv"

	"github.com/Astemirdum/library-catalog/catalog/app"
	"github.com/Astemirdum/library-catalog/catalog/config"
)

// @title        Library catalog API
// @version      1.0
// @description  Authors, books, search and per-author statistics.
// @BasePath     /api/v1
func main() {
	store := flag.String("store", "", "catalog store driver: postgres or memory (overrides STORE_DRIVER)")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		stdLog.Println("load envs from .env ", err)
	}
	opts := []config.Option{config.WithWriteTimeout(time.Minute)}
	if *store != "" {
		opts = append(opts, config.WithStoreDriver(*store))
	}
	cfg := config.NewConfig(opts...)

	if err := app.Run(cfg); err != nil {
		stdLog.Fatal("app.Run ", err)
	}
}
