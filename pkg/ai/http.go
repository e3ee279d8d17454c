package ai

import (
	"io"
	"net/http"
	"strings"

	"github.com/felixgeelhaar/featurecraft/pkg/domain/ai"
)

const maxErrorBody = 512

func clientOrDefault(c *http.Client) *http.Client {
	if c == nil {
		return http.DefaultClient
	}
	return c
}

func statusError(provider string, resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &ai.StatusError{
		Provider:   provider,
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(data)),
	}
}
