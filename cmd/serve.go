package main

import (
	"github.com/spf13/cobra"

	"github.com/vitormoschetta/go-grammar/internal/handler"
	"github.com/vitormoschetta/go-grammar/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web page, the JSON API and the MCP endpoint",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		srv := server.NewServer(cfg, logger)

		h := handler.NewHandler(srv)
		srv.SetupRouter(h.Routes())

		return srv.Start(cmd.Context())
	},
}
