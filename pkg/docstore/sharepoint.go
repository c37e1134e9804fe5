package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/blackrosevn/Dev02-Reporting/config"
)

const (
	graphBaseURL = "https://graph.microsoft.com/v1.0"
	graphScope   = "https://graph.microsoft.com/.default"
)

// SharePointStore uploads to a SharePoint document library through
// Microsoft Graph using an app-only token.
type SharePointStore struct {
	client    *http.Client
	graphBase string
	siteID    string
	driveID   string
}

// NewSharePointStore builds a store with a client-credentials token source.
func NewSharePointStore(cfg *config.SharePointConfig) *SharePointStore {
	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/token", cfg.TenantID),
		Scopes:       []string{graphScope},
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	base := &http.Client{Timeout: timeout}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)

	client := cc.Client(ctx)
	client.Timeout = timeout

	return &SharePointStore{
		client:    client,
		graphBase: graphBaseURL,
		siteID:    cfg.SiteID,
		driveID:   cfg.DriveID,
	}
}

type driveItem struct {
	WebURL string `json:"webUrl"`
}

// Upload implements Store with a simple (non-resumable) upload, which
// Graph accepts for files up to 250 MB.
func (s *SharePointStore) Upload(ctx context.Context, data []byte, destPath, fileName string) (string, error) {
	rel, err := cleanPath(destPath)
	if err != nil {
		return "", err
	}
	if err := validFileName(fileName); err != nil {
		return "", err
	}

	segs := make([]string, 0, 8)
	if rel != "" {
		for _, seg := range strings.Split(rel, "/") {
			segs = append(segs, url.PathEscape(seg))
		}
	}
	segs = append(segs, url.PathEscape(fileName))

	drive := "drive"
	if s.driveID != "" {
		drive = "drives/" + url.PathEscape(s.driveID)
	}
	endpoint := fmt.Sprintf("%s/sites/%s/%s/root:/%s:/content",
		s.graphBase, url.PathEscape(s.siteID), drive, strings.Join(segs, "/"))

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("sharepoint upload %s: %w", fileName, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("sharepoint upload %s: status %d: %s", fileName, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var item driveItem
	if err := json.Unmarshal(body, &item); err != nil {
		return "", fmt.Errorf("sharepoint upload %s: decode response: %w", fileName, err)
	}
	if item.WebURL == "" {
		return "", fmt.Errorf("sharepoint upload %s: response has no webUrl", fileName)
	}
	return item.WebURL, nil
}
