package main

import (
	"context"
	"fmt"
	stdLog "log"

	"github.com/joho/godotenv"

	"github.com/Astemirdum/library-catalog/catalog/app"
	"github.com/Astemirdum/library-catalog/catalog/config"
)

func main() {
	if err := godotenv.Load(); err != nil {
		stdLog.Println("load envs from .env ", err)
	}
	cfg := config.NewConfig()

	res, err := app.Seed(context.Background(), cfg)
	if err != nil {
		stdLog.Fatal("seed ", err)
	}
	fmt.Printf("seed finished: %d authors, %d books inserted\n", res.Authors, res.Books)
}
