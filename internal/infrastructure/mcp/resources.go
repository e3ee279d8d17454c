package mcp

import (
	"context"

	mcplib "github.com/felixgeelhaar/mcp-go"
)

const promptURI = "featurecraft://prompt"

// registerPromptResource exposes the current system prompt template.
func (s *Server) registerPromptResource() {
	s.mcpServer.Resource(promptURI).
		Name(promptURI).
		Description("System prompt template sent with every generate_tasks call").
		MimeType("text/plain").
		Handler(func(_ context.Context, _ string, _ map[string]string) (*mcplib.ResourceContent, error) {
			return &mcplib.ResourceContent{
				URI:      promptURI,
				MimeType: "text/plain",
				Text:     s.prompt.Template(),
			}, nil
		})
}
