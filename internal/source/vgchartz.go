package source

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/verte-zerg/vgtrends/internal/model"
)

// DefaultBaseURL is the chart site root.
const DefaultBaseURL = "https://www.vgchartz.com"

const defaultTimeout = 60 * time.Second

// VGChartz reads the yearly global chart page.
type VGChartz struct {
	BaseURL string
	Client  *http.Client
	Logger  *slog.Logger
}

// NewVGChartz returns a provider for baseURL (DefaultBaseURL when empty).
func NewVGChartz(baseURL string, timeout time.Duration, logger *slog.Logger) *VGChartz {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &VGChartz{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
		Logger:  logger,
	}
}

// YearURL returns the chart page for year.
func (v *VGChartz) YearURL(year int) string {
	return fmt.Sprintf("%s/yearly/games/%d/Global/", v.BaseURL, year)
}

// Fetch implements Provider. When platform is set (and not "All"), rows
// carrying a platform cell for another platform are dropped.
func (v *VGChartz) Fetch(ctx context.Context, year int, platform string) ([]model.SalesRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.YearURL(year), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := v.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected chart status: %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse chart page: %w", err)
	}

	var records []model.SalesRecord
	doc.Find("tr.chart-row").Each(func(i int, row *goquery.Selection) {
		if !matchesPlatform(row, platform) {
			return
		}
		rec, err := parseRow(row, year)
		if err != nil {
			v.Logger.Debug("skipping chart row",
				slog.Int("year", year),
				slog.Int("row", i),
				slog.Any("error", err))
			return
		}
		records = append(records, rec)
	})
	return records, nil
}

func parseRow(row *goquery.Selection, year int) (model.SalesRecord, error) {
	title, err := cellText(row, "title")
	if err != nil {
		return model.SalesRecord{}, err
	}
	genre, err := cellText(row, "genre")
	if err != nil {
		return model.SalesRecord{}, err
	}
	salesText, err := cellText(row, "sales")
	if err != nil {
		return model.SalesRecord{}, err
	}
	sales, err := ParseSales(salesText)
	if err != nil {
		return model.SalesRecord{}, err
	}
	publisher, err := cellText(row, "publisher")
	if err != nil {
		return model.SalesRecord{}, err
	}
	return model.SalesRecord{
		Title:     title,
		Genre:     genre,
		Sales:     sales,
		Publisher: publisher,
		Year:      year,
	}, nil
}

func cellText(row *goquery.Selection, class string) (string, error) {
	cell := row.Find("td." + class).First()
	if cell.Length() == 0 {
		return "", fmt.Errorf("missing %s cell", class)
	}
	return strings.TrimSpace(cell.Text()), nil
}

func matchesPlatform(row *goquery.Selection, platform string) bool {
	platform = strings.TrimSpace(platform)
	if platform == "" || strings.EqualFold(platform, "all") {
		return true
	}
	cell := row.Find("td.platform").First()
	if cell.Length() == 0 {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(cell.Text()), platform)
}

// ParseSales converts chart text like "5.2m" into millions of units.
func ParseSales(text string) (float64, error) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(text, ",", ""))
	cleaned = strings.TrimSuffix(strings.ToLower(cleaned), "m")
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid sales value %q: %w", text, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("negative sales value %q", text)
	}
	return v, nil
}
