package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MMMDolphin/ImunofanWebsite/internal/domain/seo"
)

const (
	createKeywordSQL = `INSERT INTO seo_keywords (keyword, slug, intent)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	listKeywordsSQL = `SELECT id, keyword, slug, intent, created_at
		FROM seo_keywords ORDER BY id`

	getKeywordByIDSQL = `SELECT id, keyword, slug, intent, created_at
		FROM seo_keywords WHERE id = $1`

	getKeywordBySlugSQL = `SELECT id, keyword, slug, intent, created_at
		FROM seo_keywords WHERE slug = $1`

	createPageSQL = `INSERT INTO seo_pages (keyword_id, title, meta_description, content, image1_url, image2_url, published)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	listPagesSQL = `SELECT id, keyword_id, title, meta_description, content, image1_url, image2_url, published, created_at, updated_at
		FROM seo_pages ORDER BY id`

	getPageByKeywordSQL = `SELECT id, keyword_id, title, meta_description, content, image1_url, image2_url, published, created_at, updated_at
		FROM seo_pages WHERE keyword_id = $1`

	setPagePublishedSQL = `UPDATE seo_pages SET published = $2, updated_at = now() WHERE id = $1`

	getSettingsSQL = `SELECT id, daily_page_limit,
			CASE WHEN last_reset_date < CURRENT_DATE THEN 0 ELSE pages_created_today END,
			auto_generation, last_reset_date, updated_at
		FROM seo_settings WHERE id = 1`

	updateSettingsSQL = `INSERT INTO seo_settings (id, daily_page_limit, auto_generation)
		VALUES (1, COALESCE($1, 10), COALESCE($2, TRUE))
		ON CONFLICT (id) DO UPDATE SET
			daily_page_limit = COALESCE($1, seo_settings.daily_page_limit),
			auto_generation = COALESCE($2, seo_settings.auto_generation),
			updated_at = now()
		RETURNING id, daily_page_limit,
			CASE WHEN last_reset_date < CURRENT_DATE THEN 0 ELSE pages_created_today END,
			auto_generation, last_reset_date, updated_at`

	// Day rollover, increment, and limit check happen in one statement so
	// concurrent generations cannot overshoot the limit. No row comes back
	// when the quota is already spent.
	consumeQuotaSQL = `INSERT INTO seo_settings (id, daily_page_limit, pages_created_today, last_reset_date)
		VALUES (1, $1, 1, CURRENT_DATE)
		ON CONFLICT (id) DO UPDATE SET
			pages_created_today = CASE
				WHEN seo_settings.last_reset_date < CURRENT_DATE THEN 1
				ELSE seo_settings.pages_created_today + 1
			END,
			last_reset_date = CURRENT_DATE,
			updated_at = now()
		WHERE seo_settings.last_reset_date < CURRENT_DATE
			OR seo_settings.pages_created_today < seo_settings.daily_page_limit
		RETURNING id`
)

const keywordSlugUniqueConstraint = "seo_keywords_slug_key"

var _ seo.Repository = (*SeoRepository)(nil)

// SeoRepository implements seo.Repository backed by PostgreSQL.
type SeoRepository struct {
	pool *pgxpool.Pool
}

// NewSeoRepository returns a SeoRepository that uses the given pool.
func NewSeoRepository(pool *pgxpool.Pool) *SeoRepository {
	return &SeoRepository{pool: pool}
}

// CreateKeyword stores a keyword, rejecting slug collisions.
func (r *SeoRepository) CreateKeyword(ctx context.Context, k *seo.Keyword) error {
	err := r.pool.QueryRow(ctx, createKeywordSQL, k.Keyword, k.Slug, k.Intent).
		Scan(&k.ID, &k.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, keywordSlugUniqueConstraint) {
			return seo.ErrDuplicateKeyword
		}
		return fmt.Errorf("creating keyword %q: %w", k.Keyword, err)
	}
	return nil
}

// ListKeywords returns all keywords ordered by ID.
func (r *SeoRepository) ListKeywords(ctx context.Context) ([]seo.Keyword, error) {
	rows, err := r.pool.Query(ctx, listKeywordsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing keywords: %w", err)
	}
	return pgx.CollectRows(rows, scanKeyword)
}

// GetKeywordByID returns a keyword by its identifier.
func (r *SeoRepository) GetKeywordByID(ctx context.Context, id int64) (*seo.Keyword, error) {
	rows, err := r.pool.Query(ctx, getKeywordByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting keyword %d: %w", id, err)
	}

	k, err := pgx.CollectExactlyOneRow(rows, scanKeyword)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, seo.ErrNotFound
		}
		return nil, fmt.Errorf("getting keyword %d: %w", id, err)
	}
	return &k, nil
}

// GetKeywordBySlug returns a keyword by its slug.
func (r *SeoRepository) GetKeywordBySlug(ctx context.Context, slug string) (*seo.Keyword, error) {
	rows, err := r.pool.Query(ctx, getKeywordBySlugSQL, slug)
	if err != nil {
		return nil, fmt.Errorf("getting keyword %q: %w", slug, err)
	}

	k, err := pgx.CollectExactlyOneRow(rows, scanKeyword)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, seo.ErrNotFound
		}
		return nil, fmt.Errorf("getting keyword %q: %w", slug, err)
	}
	return &k, nil
}

// CreatePage stores a generated page.
func (r *SeoRepository) CreatePage(ctx context.Context, p *seo.Page) error {
	err := r.pool.QueryRow(ctx, createPageSQL,
		p.KeywordID, p.Title, p.MetaDescription, p.Content,
		p.Image1URL, p.Image2URL, p.Published,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating page for keyword %d: %w", p.KeywordID, err)
	}
	return nil
}

// ListPages returns all generated pages ordered by ID.
func (r *SeoRepository) ListPages(ctx context.Context) ([]seo.Page, error) {
	rows, err := r.pool.Query(ctx, listPagesSQL)
	if err != nil {
		return nil, fmt.Errorf("listing pages: %w", err)
	}
	return pgx.CollectRows(rows, scanPage)
}

// GetPageByKeywordID returns the page generated for a keyword.
func (r *SeoRepository) GetPageByKeywordID(ctx context.Context, keywordID int64) (*seo.Page, error) {
	rows, err := r.pool.Query(ctx, getPageByKeywordSQL, keywordID)
	if err != nil {
		return nil, fmt.Errorf("getting page for keyword %d: %w", keywordID, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanPage)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, seo.ErrNotFound
		}
		return nil, fmt.Errorf("getting page for keyword %d: %w", keywordID, err)
	}
	return &p, nil
}

// SetPagePublished toggles a page's publish flag.
func (r *SeoRepository) SetPagePublished(ctx context.Context, id int64, published bool) error {
	tag, err := r.pool.Exec(ctx, setPagePublishedSQL, id, published)
	if err != nil {
		return fmt.Errorf("publishing page %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return seo.ErrNotFound
	}
	return nil
}

// GetSettings returns the settings row. The reported daily counter accounts
// for day rollover without mutating the row.
func (r *SeoRepository) GetSettings(ctx context.Context) (*seo.Settings, error) {
	rows, err := r.pool.Query(ctx, getSettingsSQL)
	if err != nil {
		return nil, fmt.Errorf("getting seo settings: %w", err)
	}

	s, err := pgx.CollectExactlyOneRow(rows, scanSettings)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, seo.ErrNotFound
		}
		return nil, fmt.Errorf("getting seo settings: %w", err)
	}
	return &s, nil
}

// UpdateSettings applies the given fields, creating the settings row when it
// does not exist yet.
func (r *SeoRepository) UpdateSettings(ctx context.Context, upd seo.SettingsUpdate) (*seo.Settings, error) {
	rows, err := r.pool.Query(ctx, updateSettingsSQL, upd.DailyPageLimit, upd.AutoGeneration)
	if err != nil {
		return nil, fmt.Errorf("updating seo settings: %w", err)
	}

	s, err := pgx.CollectExactlyOneRow(rows, scanSettings)
	if err != nil {
		return nil, fmt.Errorf("updating seo settings: %w", err)
	}
	return &s, nil
}

// TryConsumeDailyQuota advances today's counter and reports whether a
// generation slot was granted.
func (r *SeoRepository) TryConsumeDailyQuota(ctx context.Context, defaultLimit int32) (bool, error) {
	var id int64
	err := r.pool.QueryRow(ctx, consumeQuotaSQL, defaultLimit).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("consuming daily quota: %w", err)
	}
	return true, nil
}

func scanKeyword(row pgx.CollectableRow) (seo.Keyword, error) {
	var k seo.Keyword
	err := row.Scan(&k.ID, &k.Keyword, &k.Slug, &k.Intent, &k.CreatedAt)
	return k, err
}

func scanPage(row pgx.CollectableRow) (seo.Page, error) {
	var p seo.Page
	err := row.Scan(
		&p.ID, &p.KeywordID, &p.Title, &p.MetaDescription, &p.Content,
		&p.Image1URL, &p.Image2URL, &p.Published, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func scanSettings(row pgx.CollectableRow) (seo.Settings, error) {
	var s seo.Settings
	err := row.Scan(
		&s.ID, &s.DailyPageLimit, &s.PagesCreatedToday,
		&s.AutoGeneration, &s.LastResetDate, &s.UpdatedAt,
	)
	return s, err
}
