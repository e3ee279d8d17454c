package cli

import (
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	inframcp "github.com/felixgeelhaar/featurecraft/internal/infrastructure/mcp"
)

var (
	mcpTransport string
	mcpAddr      string
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the featurecraft MCP server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := loadServices()
		if err != nil {
			return MapError(err)
		}
		inframcp.Version = Version
		inframcp.BuildCommit = Commit
		inframcp.BuildDate = Date

		server := inframcp.NewServer(svc.Backlog, svc.Prompt, svc.Lang, slog.Default())
		transport := strings.ToLower(mcpTransport)
		if transport == "websocket" {
			transport = inframcp.TransportWebSocket
		}
		return server.Serve(cmd.Context(), transport, mcpAddr)
	},
}

func init() {
	mcpCmd.Flags().StringVar(&mcpTransport, "transport", "stdio", "Transport to use (stdio, http, ws, grpc)")
	mcpCmd.Flags().StringVar(&mcpAddr, "addr", ":8080", "Address for http/ws/grpc transports")
	RootCmd.AddCommand(mcpCmd)
}
