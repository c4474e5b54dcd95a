// Package seo implements the keyword-driven landing page tooling: keyword
// storage, AI-assisted page generation behind a daily quota, and publish
// control.
package seo

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

var (
	ErrNotFound = errors.New("seo record not found")

	// ErrDuplicateKeyword is returned when a keyword slugs to an already
	// stored slug.
	ErrDuplicateKeyword = errors.New("keyword already exists")

	// ErrDailyLimitReached is returned when today's generation quota is spent.
	ErrDailyLimitReached = errors.New("daily page generation limit reached")
)

// Keyword is a target search phrase with its search intent.
type Keyword struct {
	ID        int64
	Keyword   string
	Slug      string
	Intent    string
	CreatedAt time.Time
}

// Page is a generated landing page for one keyword.
type Page struct {
	ID              int64
	KeywordID       int64
	Title           string
	MetaDescription string
	Content         string
	Image1URL       string
	Image2URL       string
	Published       bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Settings controls page generation. The per-day counter lives in this row
// and is advanced with a single conditional update, never in process memory.
type Settings struct {
	ID                int64
	DailyPageLimit    int32
	PagesCreatedToday int32
	AutoGeneration    bool
	LastResetDate     time.Time
	UpdatedAt         time.Time
}

// SettingsUpdate carries the admin-editable settings fields.
type SettingsUpdate struct {
	DailyPageLimit *int32
	AutoGeneration *bool
}

// GeneratedContent is the text part of a generated page.
type GeneratedContent struct {
	Title           string
	MetaDescription string
	Content         string
}

// GeneratedImages are the illustration URLs for a generated page.
type GeneratedImages struct {
	Image1URL string
	Image2URL string
}

// Generator produces page content for a keyword and intent. Implemented by
// internal/gateway/openai.
type Generator interface {
	GenerateContent(ctx context.Context, keyword, intent string) (*GeneratedContent, error)
	GenerateImages(ctx context.Context, keyword, intent string) (*GeneratedImages, error)
}

// Repository defines persistence operations for the SEO subsystem.
//
// TryConsumeDailyQuota atomically advances today's counter: it resets the
// count on a new day, increments it when under the limit, and reports whether
// a generation slot was granted. The read-modify-write happens in one
// statement so concurrent generations cannot overshoot the limit.
type Repository interface {
	CreateKeyword(ctx context.Context, k *Keyword) error
	ListKeywords(ctx context.Context) ([]Keyword, error)
	GetKeywordByID(ctx context.Context, id int64) (*Keyword, error)
	GetKeywordBySlug(ctx context.Context, slug string) (*Keyword, error)

	CreatePage(ctx context.Context, p *Page) error
	ListPages(ctx context.Context) ([]Page, error)
	GetPageByKeywordID(ctx context.Context, keywordID int64) (*Page, error)
	SetPagePublished(ctx context.Context, id int64, published bool) error

	GetSettings(ctx context.Context) (*Settings, error)
	UpdateSettings(ctx context.Context, upd SettingsUpdate) (*Settings, error)
	TryConsumeDailyQuota(ctx context.Context, defaultLimit int32) (bool, error)
}
