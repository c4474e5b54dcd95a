package seo

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock implementations ---

type mockRepo struct {
	keywords map[int64]*Keyword
	bySlug   map[string]*Keyword
	pages    map[int64]*Page // by keyword ID
	nextID   int64

	quotaUsed  int32
	quotaLimit int32
}

func newMockRepo(quotaLimit int32) *mockRepo {
	return &mockRepo{
		keywords:   make(map[int64]*Keyword),
		bySlug:     make(map[string]*Keyword),
		pages:      make(map[int64]*Page),
		quotaLimit: quotaLimit,
	}
}

func (m *mockRepo) CreateKeyword(_ context.Context, k *Keyword) error {
	if _, ok := m.bySlug[k.Slug]; ok {
		return ErrDuplicateKeyword
	}
	m.nextID++
	k.ID = m.nextID
	k.CreatedAt = time.Now()
	m.keywords[k.ID] = k
	m.bySlug[k.Slug] = k
	return nil
}

func (m *mockRepo) ListKeywords(_ context.Context) ([]Keyword, error) {
	out := make([]Keyword, 0, len(m.keywords))
	for _, k := range m.keywords {
		out = append(out, *k)
	}
	return out, nil
}

func (m *mockRepo) GetKeywordByID(_ context.Context, id int64) (*Keyword, error) {
	k, ok := m.keywords[id]
	if !ok {
		return nil, ErrNotFound
	}
	return k, nil
}

func (m *mockRepo) GetKeywordBySlug(_ context.Context, slug string) (*Keyword, error) {
	k, ok := m.bySlug[slug]
	if !ok {
		return nil, ErrNotFound
	}
	return k, nil
}

func (m *mockRepo) CreatePage(_ context.Context, p *Page) error {
	m.nextID++
	p.ID = m.nextID
	m.pages[p.KeywordID] = p
	return nil
}

func (m *mockRepo) ListPages(_ context.Context) ([]Page, error) {
	out := make([]Page, 0, len(m.pages))
	for _, p := range m.pages {
		out = append(out, *p)
	}
	return out, nil
}

func (m *mockRepo) GetPageByKeywordID(_ context.Context, keywordID int64) (*Page, error) {
	p, ok := m.pages[keywordID]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (m *mockRepo) SetPagePublished(_ context.Context, id int64, published bool) error {
	for _, p := range m.pages {
		if p.ID == id {
			p.Published = published
			return nil
		}
	}
	return ErrNotFound
}

func (m *mockRepo) GetSettings(_ context.Context) (*Settings, error) {
	return &Settings{DailyPageLimit: m.quotaLimit, PagesCreatedToday: m.quotaUsed}, nil
}

func (m *mockRepo) UpdateSettings(_ context.Context, upd SettingsUpdate) (*Settings, error) {
	if upd.DailyPageLimit != nil {
		m.quotaLimit = *upd.DailyPageLimit
	}
	return m.GetSettings(context.Background())
}

func (m *mockRepo) TryConsumeDailyQuota(_ context.Context, _ int32) (bool, error) {
	if m.quotaUsed >= m.quotaLimit {
		return false, nil
	}
	m.quotaUsed++
	return true, nil
}

type mockGenerator struct {
	content    *GeneratedContent
	images     *GeneratedImages
	contentErr error
	imagesErr  error

	contentCalls int
}

func (m *mockGenerator) GenerateContent(_ context.Context, _, _ string) (*GeneratedContent, error) {
	m.contentCalls++
	return m.content, m.contentErr
}

func (m *mockGenerator) GenerateImages(_ context.Context, _, _ string) (*GeneratedImages, error) {
	if m.imagesErr != nil {
		return nil, m.imagesErr
	}
	if m.images == nil {
		return &GeneratedImages{}, nil
	}
	return m.images, nil
}

// --- Tests ---

func TestSlugify(t *testing.T) {
	tests := []struct {
		keyword string
		want    string
	}{
		{"имунофан цена", "imunofan-tsena"},
		{"Имунофан  за деца", "imunofan-za-detsa"},
		{"peptide therapy 2024", "peptide-therapy-2024"},
		{"  -- trimmed --  ", "trimmed"},
		{"шипка и щастие", "shipka-i-shtastie"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.keyword), "keyword %q", tt.keyword)
	}
}

func TestCreateKeyword_Duplicate(t *testing.T) {
	svc := NewService(newMockRepo(10), &mockGenerator{}, 10)

	_, err := svc.CreateKeyword(context.Background(), "имунофан цена", "transactional")
	require.NoError(t, err)

	_, err = svc.CreateKeyword(context.Background(), "Имунофан цена", "informational")
	require.ErrorIs(t, err, ErrDuplicateKeyword)
}

func TestGeneratePage_HappyPath(t *testing.T) {
	repo := newMockRepo(10)
	gen := &mockGenerator{
		content: &GeneratedContent{Title: "Имунофан цена", MetaDescription: "meta", Content: "body"},
		images:  &GeneratedImages{Image1URL: "https://img/1.png", Image2URL: "https://img/2.png"},
	}
	svc := NewService(repo, gen, 10)

	k, err := svc.CreateKeyword(context.Background(), "имунофан цена", "transactional")
	require.NoError(t, err)

	page, err := svc.GeneratePage(context.Background(), k.ID)
	require.NoError(t, err)
	assert.Equal(t, "Имунофан цена", page.Title)
	assert.Equal(t, "https://img/1.png", page.Image1URL)
	assert.False(t, page.Published)
}

func TestGeneratePage_ImagesFailureIsNonFatal(t *testing.T) {
	repo := newMockRepo(10)
	gen := &mockGenerator{
		content:   &GeneratedContent{Title: "t", MetaDescription: "m", Content: "c"},
		imagesErr: errors.New("dall-e unavailable"),
	}
	svc := NewService(repo, gen, 10)

	k, err := svc.CreateKeyword(context.Background(), "имунофан спрей", "transactional")
	require.NoError(t, err)

	page, err := svc.GeneratePage(context.Background(), k.ID)
	require.NoError(t, err)
	assert.Empty(t, page.Image1URL)
	assert.Empty(t, page.Image2URL)
}

func TestGeneratePage_QuotaExhausted(t *testing.T) {
	repo := newMockRepo(1)
	gen := &mockGenerator{content: &GeneratedContent{Title: "t"}}
	svc := NewService(repo, gen, 1)

	k1, err := svc.CreateKeyword(context.Background(), "първа дума", "info")
	require.NoError(t, err)
	k2, err := svc.CreateKeyword(context.Background(), "втора дума", "info")
	require.NoError(t, err)

	_, err = svc.GeneratePage(context.Background(), k1.ID)
	require.NoError(t, err)

	_, err = svc.GeneratePage(context.Background(), k2.ID)
	require.ErrorIs(t, err, ErrDailyLimitReached)
}

func TestGeneratePage_ExistingPageSkipsQuota(t *testing.T) {
	repo := newMockRepo(1)
	gen := &mockGenerator{content: &GeneratedContent{Title: "t"}}
	svc := NewService(repo, gen, 1)

	k, err := svc.CreateKeyword(context.Background(), "имунофан", "info")
	require.NoError(t, err)

	first, err := svc.GeneratePage(context.Background(), k.ID)
	require.NoError(t, err)

	again, err := svc.GeneratePage(context.Background(), k.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, 1, gen.contentCalls, "existing page must not regenerate")
}

func TestGeneratePage_ContentFailureConsumesNoPage(t *testing.T) {
	repo := newMockRepo(10)
	gen := &mockGenerator{contentErr: errors.New("model overloaded")}
	svc := NewService(repo, gen, 10)

	k, err := svc.CreateKeyword(context.Background(), "имунофан", "info")
	require.NoError(t, err)

	_, err = svc.GeneratePage(context.Background(), k.ID)
	require.Error(t, err)

	_, err = repo.GetPageByKeywordID(context.Background(), k.ID)
	require.ErrorIs(t, err, ErrNotFound)
}
