// Command spotify-top-sync runs the web application that mirrors the user's
// recent top tracks into a Spotify playlist.
package main

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/solenne/spotify-top-sync/internal/config"
	"github.com/solenne/spotify-top-sync/internal/logger"
	"github.com/solenne/spotify-top-sync/internal/web"
	webfs "github.com/solenne/spotify-top-sync/web"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New()
	defer func() {
		_ = log.Sync()
	}()

	templates, err := fs.Sub(webfs.TemplatesFS, "templates")
	if err != nil {
		return fmt.Errorf("creating templates filesystem: %w", err)
	}

	static, err := fs.Sub(webfs.StaticFS, "static")
	if err != nil {
		return fmt.Errorf("creating static filesystem: %w", err)
	}

	server, err := web.NewServer(web.ServerConfig{
		Cfg:         cfg,
		Logger:      log,
		TemplatesFS: templates,
		StaticFS:    static,
	})
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	return server.Run()
}
