package meaning

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

const lookupTimeout = 3 * time.Second

// Client resolves meanings over HTTP. English words get a dictionary
// definition, other languages get an English translation.
type Client struct {
	httpClient *http.Client

	// Base URLs are fields so tests can point them at a local server.
	DictionaryURL string
	TranslateURL  string
}

func NewClient() *Client {
	return &Client{
		httpClient:    &http.Client{Timeout: lookupTimeout},
		DictionaryURL: "https://api.dictionaryapi.dev/api/v2/entries/en",
		TranslateURL:  "https://api.mymemory.translated.net/get",
	}
}

// Meaning implements Lookup. Network failures and unknown words both come
// back as ("", err) and ("", nil) respectively; callers treat them the same.
func (c *Client) Meaning(ctx context.Context, word, language string) (string, error) {
	if language == "en" {
		return c.define(ctx, word)
	}
	return c.translate(ctx, word, language)
}

type dictEntry struct {
	Meanings []struct {
		Definitions []struct {
			Definition string `json:"definition"`
		} `json:"definitions"`
	} `json:"meanings"`
}

func (c *Client) define(ctx context.Context, word string) (string, error) {
	u := c.DictionaryURL + "/" + url.PathEscape(word)
	body, status, err := c.get(ctx, u)
	if err != nil {
		return "", err
	}
	// 404 is the API's answer for an unknown word.
	if status == http.StatusNotFound {
		return "", nil
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("dictionary lookup: status %d", status)
	}

	var entries []dictEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return "", fmt.Errorf("dictionary lookup: %w", err)
	}
	for _, e := range entries {
		for _, m := range e.Meanings {
			for _, d := range m.Definitions {
				if d.Definition != "" {
					return d.Definition, nil
				}
			}
		}
	}
	return "", nil
}

type translateResponse struct {
	ResponseData struct {
		TranslatedText string `json:"translatedText"`
	} `json:"responseData"`
}

func (c *Client) translate(ctx context.Context, word, language string) (string, error) {
	u := fmt.Sprintf("%s?q=%s&langpair=%s|en",
		c.TranslateURL, url.QueryEscape(word), url.QueryEscape(language))
	body, status, err := c.get(ctx, u)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("translate lookup: status %d", status)
	}

	var resp translateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("translate lookup: %w", err)
	}
	text := strings.TrimSpace(resp.ResponseData.TranslatedText)
	// The service echoes the input when it has no translation.
	if strings.EqualFold(text, word) {
		return "", nil
	}
	return text, nil
}

func (c *Client) get(ctx context.Context, u string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, 0, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, 0, err
	}
	return body, resp.StatusCode, nil
}
