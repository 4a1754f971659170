// Command token prints a signed operator token for calling the API locally.
//
//	go run ./cmd/token -operator alice -ttl 24h
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"datalog/internal/config"
	"datalog/internal/logger"
	"datalog/internal/middleware"
)

func main() {
	operator := flag.String("operator", "", "operator name to embed in the token")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Get().Fatalf("failed to load config: %v", err)
	}

	token, err := middleware.GenerateOperatorToken(cfg.JWTSecret, *operator, *ttl)
	if err != nil {
		logger.Get().Fatalf("failed to generate token: %v", err)
	}
	fmt.Println(token)
}
