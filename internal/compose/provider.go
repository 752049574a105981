package compose

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"webcanvas/internal/logging"
)

// Provider contributes an optional context block to the system message.
// Each provider declares its own trigger predicate and its fetch/fallback
// contract; a failing fetch degrades to the fallback text and never aborts
// the turn.
type Provider interface {
	Name() string
	Match(prompt string) bool
	Fetch(ctx context.Context) (string, error)
	Fallback() string
}

const maxProviderBody = 1 << 20 // 1 MiB of side data is plenty for a prompt

// municipalKeywords trigger the Modiin municipal dataset injection.
var municipalKeywords = []string{"עיריית מודיעין", "עיריית מודיעין-מכבים-רעות", "מודיעין"}

// MunicipalDataProvider fetches the structured Modiin dataset from a fixed
// endpoint and embeds the returned JSON verbatim.
type MunicipalDataProvider struct {
	url        string
	httpClient *http.Client
}

func NewMunicipalDataProvider(url string) *MunicipalDataProvider {
	return &MunicipalDataProvider{
		url: url,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (p *MunicipalDataProvider) Name() string { return "municipal-data" }

func (p *MunicipalDataProvider) Match(prompt string) bool {
	for _, keyword := range municipalKeywords {
		if strings.Contains(prompt, keyword) {
			return true
		}
	}
	return false
}

func (p *MunicipalDataProvider) Fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch municipal data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("municipal data endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProviderBody))
	if err != nil {
		return "", fmt.Errorf("failed to read municipal data: %w", err)
	}

	logging.Debug("municipal data fetched: %d bytes", len(body))
	return fmt.Sprintf("The following JSON provides structured data about Modiin. The JSON data: %s\n\n", string(body)), nil
}

func (p *MunicipalDataProvider) Fallback() string {
	return "There was an error retrieving data about Modiin. Please refer to general knowledge for now.\n\n"
}
