package seo

import (
	"context"
	"strings"
	"unicode"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// DefaultDailyPageLimit caps generated pages per day until the admin changes
// the setting.
const DefaultDailyPageLimit = 10

// Service coordinates keyword storage and quota-checked page generation.
type Service struct {
	repo       Repository
	generator  Generator
	dailyLimit int32
}

// NewService creates a seo Service. A non-positive dailyLimit falls back to
// DefaultDailyPageLimit.
func NewService(repo Repository, generator Generator, dailyLimit int32) *Service {
	if dailyLimit <= 0 {
		dailyLimit = DefaultDailyPageLimit
	}
	return &Service{
		repo:       repo,
		generator:  generator,
		dailyLimit: dailyLimit,
	}
}

// CreateKeyword stores a keyword under its derived slug.
func (s *Service) CreateKeyword(ctx context.Context, keyword, intent string) (*Keyword, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, errors.New("keyword is required")
	}

	k := &Keyword{
		Keyword: keyword,
		Slug:    Slugify(keyword),
		Intent:  strings.TrimSpace(intent),
	}
	if err := s.repo.CreateKeyword(ctx, k); err != nil {
		return nil, err
	}
	return k, nil
}

// Keywords lists all stored keywords.
func (s *Service) Keywords(ctx context.Context) ([]Keyword, error) {
	return s.repo.ListKeywords(ctx)
}

// Pages lists all generated pages.
func (s *Service) Pages(ctx context.Context) ([]Page, error) {
	return s.repo.ListPages(ctx)
}

// PageBySlug returns the page generated for the keyword with the given slug.
func (s *Service) PageBySlug(ctx context.Context, slug string) (*Page, error) {
	k, err := s.repo.GetKeywordBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.repo.GetPageByKeywordID(ctx, k.ID)
}

// GeneratePage generates and stores a page for the keyword, consuming one
// slot of today's quota first. Image generation is a best-effort enrichment:
// its failure is logged and the page is stored without illustrations.
func (s *Service) GeneratePage(ctx context.Context, keywordID int64) (*Page, error) {
	k, err := s.repo.GetKeywordByID(ctx, keywordID)
	if err != nil {
		return nil, err
	}

	if existing, err := s.repo.GetPageByKeywordID(ctx, k.ID); err == nil {
		return existing, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, errors.Wrap(err, "check existing page")
	}

	allowed, err := s.repo.TryConsumeDailyQuota(ctx, s.dailyLimit)
	if err != nil {
		return nil, errors.Wrap(err, "consume daily quota")
	}
	if !allowed {
		return nil, ErrDailyLimitReached
	}

	content, err := s.generator.GenerateContent(ctx, k.Keyword, k.Intent)
	if err != nil {
		return nil, errors.Wrapf(err, "generate content for %q", k.Keyword)
	}

	page := &Page{
		KeywordID:       k.ID,
		Title:           content.Title,
		MetaDescription: content.MetaDescription,
		Content:         content.Content,
	}

	images, err := s.generator.GenerateImages(ctx, k.Keyword, k.Intent)
	if err != nil {
		zctx.From(ctx).Warn("Image generation failed, storing page without images",
			zap.String("keyword", k.Keyword),
			zap.Error(err),
		)
	} else {
		page.Image1URL = images.Image1URL
		page.Image2URL = images.Image2URL
	}

	if err := s.repo.CreatePage(ctx, page); err != nil {
		return nil, errors.Wrap(err, "create page")
	}
	return page, nil
}

// SetPublished toggles a page's publish flag.
func (s *Service) SetPublished(ctx context.Context, pageID int64, published bool) error {
	return s.repo.SetPagePublished(ctx, pageID, published)
}

// Settings returns the current generation settings, falling back to defaults
// when the row has not been created yet.
func (s *Service) Settings(ctx context.Context) (*Settings, error) {
	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return &Settings{DailyPageLimit: s.dailyLimit, AutoGeneration: true}, nil
		}
		return nil, err
	}
	return settings, nil
}

// UpdateSettings applies an admin settings change.
func (s *Service) UpdateSettings(ctx context.Context, upd SettingsUpdate) (*Settings, error) {
	return s.repo.UpdateSettings(ctx, upd)
}

// translit maps Bulgarian Cyrillic letters to their Latin transliteration for
// URL-safe slugs.
var translit = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e", 'ж': "zh",
	'з': "z", 'и': "i", 'й': "y", 'к': "k", 'л': "l", 'м': "m", 'н': "n",
	'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u", 'ф': "f",
	'х': "h", 'ц': "ts", 'ч': "ch", 'ш': "sh", 'щ': "sht", 'ъ': "a",
	'ь': "y", 'ю': "yu", 'я': "ya",
}

// Slugify derives a URL-safe slug from a keyword: Cyrillic is transliterated,
// everything else lowercased, and runs of non-alphanumerics collapse to a
// single hyphen.
func Slugify(keyword string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(keyword) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case unicode.Is(unicode.Cyrillic, r):
			if lat, ok := translit[r]; ok {
				b.WriteString(lat)
			}
		default:
			b.WriteByte('-')
		}
	}

	slug := b.String()
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	return strings.Trim(slug, "-")
}
