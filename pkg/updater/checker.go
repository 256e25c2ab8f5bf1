package updater

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kpauljoseph/pagecutter/pkg/logger"
	"github.com/kpauljoseph/pagecutter/pkg/version"
)

const (
	releaseURL    = "https://api.github.com/repos/kpauljoseph/pagecutter/releases/latest"
	userAgent     = "pagecutter-updater"
	checkInterval = time.Hour
)

type githubRelease struct {
	TagName    string `json:"tag_name"`
	Body       string `json:"body"`
	HTMLURL    string `json:"html_url"`
	Draft      bool   `json:"draft"`
	Prerelease bool   `json:"prerelease"`
}

type UpdateInfo struct {
	CurrentVersion string
	LatestVersion  string
	ReleaseNotes   string
	ReleaseURL     string
	IsAvailable    bool
}

// Checker looks up the latest published release on GitHub. Checks are
// rate limited; repeated calls within the interval return nil.
type Checker struct {
	client      *http.Client
	logger      *logger.Logger
	lastChecked time.Time
}

func NewChecker(logger *logger.Logger) *Checker {
	return &Checker{
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

func (c *Checker) CheckForUpdates() (*UpdateInfo, error) {
	if time.Since(c.lastChecked) < checkInterval {
		return nil, nil
	}
	c.lastChecked = time.Now()

	c.logger.Debug("Checking for updates...")

	req, err := http.NewRequest(http.MethodGet, releaseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch latest release: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GitHub API returned status %d", resp.StatusCode)
	}

	var release githubRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("failed to decode release: %w", err)
	}

	if release.Draft || release.Prerelease {
		return nil, nil
	}

	current := strings.TrimPrefix(version.Version, "v")
	latest := strings.TrimPrefix(release.TagName, "v")

	return &UpdateInfo{
		CurrentVersion: current,
		LatestVersion:  latest,
		ReleaseNotes:   release.Body,
		ReleaseURL:     release.HTMLURL,
		IsAvailable:    compareVersions(current, latest) < 0,
	}, nil
}

// compareVersions compares dotted numeric versions; non-numeric
// segments fall back to string comparison.
func compareVersions(v1, v2 string) int {
	parts1 := strings.Split(v1, ".")
	parts2 := strings.Split(v2, ".")

	for i := 0; i < len(parts1) && i < len(parts2); i++ {
		n1, err1 := strconv.Atoi(parts1[i])
		n2, err2 := strconv.Atoi(parts2[i])

		if err1 == nil && err2 == nil {
			if n1 != n2 {
				if n1 < n2 {
					return -1
				}
				return 1
			}
			continue
		}

		if parts1[i] != parts2[i] {
			if parts1[i] < parts2[i] {
				return -1
			}
			return 1
		}
	}

	switch {
	case len(parts1) < len(parts2):
		return -1
	case len(parts1) > len(parts2):
		return 1
	}
	return 0
}
