package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/CSCI-GA-2820-FA25-003/shopcarts-sub000/internal/config"
	"github.com/CSCI-GA-2820-FA25-003/shopcarts-sub000/internal/db"
	"github.com/CSCI-GA-2820-FA25-003/shopcarts-sub000/internal/importer"
	shopcartrepo "github.com/CSCI-GA-2820-FA25-003/shopcarts-sub000/internal/repository/shopcart"
	shopcartsvc "github.com/CSCI-GA-2820-FA25-003/shopcarts-sub000/internal/service/shopcart"
)

func main() {
	path := flag.String("file", "", "path to CSV file with shopcart items")
	flag.Parse()

	logger := log.New(os.Stdout, "[importer] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	if *path == "" {
		logger.Fatal("usage: importer -file <items.csv>")
	}

	file, err := os.Open(*path)
	if err != nil {
		logger.Fatalf("open csv: %v", err)
	}
	defer file.Close()

	cfg := config.FromEnv()
	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	repo := shopcartrepo.NewPostgres(pool, logger)
	svc := shopcartsvc.New(repo)

	imported, err := importer.NewCSVImporter(file, svc).Run(ctx)
	if err != nil {
		logger.Fatalf("import: %v", err)
	}

	logger.Printf("imported %d carts", imported)
}
