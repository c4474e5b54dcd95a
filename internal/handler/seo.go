package handler

import (
	"encoding/csv"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/gorilla/mux"

	"github.com/MMMDolphin/ImunofanWebsite/internal/domain/seo"
)

func (h *Handler) listKeywords(w http.ResponseWriter, r *http.Request) {
	keywords, err := h.seo.Keywords(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	type keywordView struct {
		ID      int64  `json:"id"`
		Keyword string `json:"keyword"`
		Slug    string `json:"slug"`
		Intent  string `json:"intent"`
	}
	views := make([]keywordView, len(keywords))
	for i, k := range keywords {
		views[i] = keywordView{ID: k.ID, Keyword: k.Keyword, Slug: k.Slug, Intent: k.Intent}
	}
	respondJSON(w, http.StatusOK, views)
}

// uploadKeywords imports keywords from a CSV body (or multipart "file" part):
// one row per keyword, optional second column for intent, optional header.
// Duplicate slugs are counted as skipped, not errors, so re-uploads are safe.
func (h *Handler) uploadKeywords(w http.ResponseWriter, r *http.Request) {
	body, err := keywordCSVBody(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "csv file required")
		return
	}
	defer body.Close()

	reader := csv.NewReader(body)
	reader.FieldsPerRecord = -1

	var created, skipped int
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			respondError(w, http.StatusBadRequest, "malformed csv")
			return
		}
		if len(record) == 0 {
			continue
		}

		keyword := strings.TrimSpace(record[0])
		if keyword == "" || strings.EqualFold(keyword, "keyword") {
			continue
		}
		intent := ""
		if len(record) > 1 {
			intent = strings.TrimSpace(record[1])
		}

		_, err = h.seo.CreateKeyword(r.Context(), keyword, intent)
		switch {
		case err == nil:
			created++
		case errors.Is(err, seo.ErrDuplicateKeyword):
			skipped++
		default:
			respondDomainError(w, r, err)
			return
		}
	}

	respondJSON(w, http.StatusOK, map[string]int{
		"created": created,
		"skipped": skipped,
	})
}

func keywordCSVBody(r *http.Request) (io.ReadCloser, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if strings.HasPrefix(mediaType, "multipart/") {
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, err
		}
		return file, nil
	}
	return r.Body, nil
}

func (h *Handler) listPages(w http.ResponseWriter, r *http.Request) {
	pages, err := h.seo.Pages(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	views := make([]pageView, len(pages))
	for i := range pages {
		views[i] = toPageView(&pages[i])
	}
	respondJSON(w, http.StatusOK, views)
}

func (h *Handler) generatePage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		KeywordID int64 `json:"keywordId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	page, err := h.seo.GeneratePage(r.Context(), req.KeywordID)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toPageView(page))
}

func (h *Handler) publishPage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid page id")
		return
	}

	var req struct {
		Published bool `json:"published"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.seo.SetPublished(r.Context(), id, req.Published); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"published": req.Published})
}

func (h *Handler) getSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.seo.Settings(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toSettingsView(settings))
}

func (h *Handler) updateSettings(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DailyPageLimit *int32 `json:"dailyPageLimit"`
		AutoGeneration *bool  `json:"autoGeneration"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	settings, err := h.seo.UpdateSettings(r.Context(), seo.SettingsUpdate{
		DailyPageLimit: req.DailyPageLimit,
		AutoGeneration: req.AutoGeneration,
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toSettingsView(settings))
}

func toSettingsView(s *seo.Settings) map[string]any {
	return map[string]any{
		"dailyPageLimit":    s.DailyPageLimit,
		"pagesCreatedToday": s.PagesCreatedToday,
		"autoGeneration":    s.AutoGeneration,
	}
}

// publicPage serves a generated landing page by slug. Unpublished pages stay
// invisible to the public surface.
func (h *Handler) publicPage(w http.ResponseWriter, r *http.Request) {
	page, err := h.seo.PageBySlug(r.Context(), mux.Vars(r)["slug"])
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	if !page.Published {
		respondError(w, http.StatusNotFound, "not found")
		return
	}
	respondJSON(w, http.StatusOK, toPageView(page))
}
