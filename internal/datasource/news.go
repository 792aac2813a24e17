// Package datasource fetches supplementary context for an analysis, such as
// recent headlines for a ticker.
package datasource

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/seenimoa/finchat/internal/infra"
	"github.com/seenimoa/finchat/pkg/models"
	"github.com/seenimoa/finchat/pkg/utils"
)

// DefaultFeedURL is the Yahoo Finance per-ticker headline feed; %s is the
// query-escaped ticker.
const DefaultFeedURL = "https://feeds.finance.yahoo.com/rss/2.0/headline?s=%s&region=US&lang=en-US"

// News fetches ticker headlines from an RSS feed.
type News struct {
	feedURL string
	limiter *infra.RateLimiter
	parser  *gofeed.Parser
}

// NewNews creates a news source for feedURL (DefaultFeedURL when empty).
func NewNews(feedURL string, timeout time.Duration) *News {
	if feedURL == "" {
		feedURL = DefaultFeedURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	parser := gofeed.NewParser()
	parser.UserAgent = "finchat/1.0"
	parser.Client = &http.Client{Timeout: timeout}
	return &News{
		feedURL: feedURL,
		limiter: infra.NewRateLimiter(2, time.Second), // conservative: 2 req/s
		parser:  parser,
	}
}

// Name returns the data source name.
func (n *News) Name() string { return "Yahoo Finance" }

// GetStockNews returns up to limit headlines for ticker, newest first.
// limit <= 0 returns every item in the feed.
func (n *News) GetStockNews(ctx context.Context, ticker string, limit int) ([]models.NewsArticle, error) {
	symbol := utils.NormalizeTicker(ticker)
	if !utils.ValidTicker(symbol) {
		return nil, fmt.Errorf("news: invalid ticker %q", ticker)
	}
	if err := n.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	feedURL := n.feedURL
	if strings.Contains(feedURL, "%s") {
		feedURL = fmt.Sprintf(feedURL, url.QueryEscape(symbol))
	}
	feed, err := n.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse RSS for %s: %w", symbol, err)
	}

	source := feed.Title
	if source == "" {
		source = n.Name()
	}
	articles := make([]models.NewsArticle, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item.Title == "" {
			continue
		}
		a := models.NewsArticle{
			Title:   strings.TrimSpace(item.Title),
			URL:     item.Link,
			Source:  source,
			Summary: cleanHTML(item.Description),
		}
		if item.PublishedParsed != nil {
			a.PublishedAt = *item.PublishedParsed
		}
		articles = append(articles, a)
	}

	sortArticlesByDate(articles)
	if limit > 0 && len(articles) > limit {
		articles = articles[:limit]
	}
	return articles, nil
}

// cleanHTML strips HTML tags from a string using goquery.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// sortArticlesByDate sorts articles by published date (newest first).
func sortArticlesByDate(articles []models.NewsArticle) {
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].PublishedAt.After(articles[j].PublishedAt)
	})
}
