// Command admin-token prints a JWT for the admin stats API.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/scmsohel/epic-loot-bot/internal/config"
	"github.com/scmsohel/epic-loot-bot/internal/infra/web"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if cfg.AdminAPI.JWTSecret == "" {
		fmt.Fprintln(os.Stderr, "admin_api.jwt_secret (ADMIN_API_JWT_SECRET) is not set")
		os.Exit(1)
	}

	token, err := web.NewAuthManager(cfg.AdminAPI.JWTSecret, *ttl).Mint(strconv.FormatInt(cfg.Admin.ID, 10))
	if err != nil {
		fmt.Fprintf(os.Stderr, "mint: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
