package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTranslateURL is the public LibreTranslate endpoint.
const DefaultTranslateURL = "https://libretranslate.de/translate"

// LibreTranslate calls a LibreTranslate server.
type LibreTranslate struct {
	URL    string
	APIKey string
	HTTP   *http.Client
}

// NewLibreTranslate creates a client for endpoint with the given timeout.
func NewLibreTranslate(endpoint string, timeout time.Duration) *LibreTranslate {
	if endpoint == "" {
		endpoint = DefaultTranslateURL
	}
	return &LibreTranslate{URL: endpoint, HTTP: &http.Client{Timeout: timeout}}
}

type translateResponse struct {
	TranslatedText *string `json:"translatedText"`
	Error          string  `json:"error"`
}

// Translate implements Translator. The source language is left for the
// server to detect.
func (l *LibreTranslate) Translate(ctx context.Context, text, target string) (string, error) {
	form := url.Values{
		"q":      {text},
		"source": {"auto"},
		"target": {target},
	}
	if l.APIKey != "" {
		form.Set("api_key", l.APIKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.URL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("creating translate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	client := l.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling translate service: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("reading translate response: %w", err)
	}

	var out translateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decoding translate response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		if out.Error != "" {
			return "", fmt.Errorf("translate service returned status %d: %s", resp.StatusCode, out.Error)
		}
		return "", fmt.Errorf("translate service returned status %d", resp.StatusCode)
	}
	if out.TranslatedText == nil {
		return "", fmt.Errorf("translate response has no translatedText")
	}
	return *out.TranslatedText, nil
}
