// Obfuscator HTTP server — exposes the obfuscation operation over a
// small REST surface for environments without a Lambda runtime.
package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/gdpr-toolkit/obfuscator/pkg/api"
	"github.com/gdpr-toolkit/obfuscator/pkg/config"
	"github.com/gdpr-toolkit/obfuscator/pkg/engine"
	"github.com/gdpr-toolkit/obfuscator/pkg/handler"
	"github.com/gdpr-toolkit/obfuscator/pkg/storage"
	"github.com/gdpr-toolkit/obfuscator/pkg/version"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("Could not load .env file, continuing with existing environment", "error", err)
	}

	cfg := config.FromEnv()
	slog.Info("Starting obfuscator server",
		"version", version.Full(), "http_port", cfg.HTTPPort, "region", cfg.AWSRegion)

	h := handler.New(engine.New(storage.NewRouter(cfg)))
	server := api.NewServer(h)

	if err := server.Router().Run(":" + cfg.HTTPPort); err != nil {
		slog.Error("Server exited", "error", err)
		os.Exit(1)
	}
}
