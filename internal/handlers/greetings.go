package handlers

import (
	"net/http"

	"github.com/Jomoregie1/greetingapi/internal/greetings"
)

// params reads the query string. "type" is accepted as an alias of "category".
func params(r *http.Request) greetings.Params {
	q := r.URL.Query()
	category := q.Get("category")
	if category == "" {
		category = q.Get("type")
	}
	return greetings.Params{
		Category: category,
		Query:    q.Get("query"),
		Limit:    q.Get("limit"),
		Offset:   q.Get("offset"),
	}
}

// ListGreetings handles GET /greetings.
func (h *Handler) ListGreetings(w http.ResponseWriter, r *http.Request) {
	req, err := greetings.ParseListRequest(params(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	page, err := h.reader.List(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.JSON(w, http.StatusOK, page)
}

// RandomGreeting handles GET /greetings/random.
func (h *Handler) RandomGreeting(w http.ResponseWriter, r *http.Request) {
	category, err := greetings.ParseCategory(params(r).Category, true)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	greeting, err := h.reader.Random(r.Context(), *category)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.JSON(w, http.StatusOK, greeting)
}

// GreetingTypes handles GET /greetings/types.
func (h *Handler) GreetingTypes(w http.ResponseWriter, r *http.Request) {
	list, err := h.reader.Categories(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.JSON(w, http.StatusOK, list)
}

// SearchGreetings handles GET /greetings/search.
func (h *Handler) SearchGreetings(w http.ResponseWriter, r *http.Request) {
	req, err := greetings.ParseSearchRequest(params(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	page, err := h.reader.Search(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.JSON(w, http.StatusOK, page)
}

// RecentGreetings handles GET /greetings/recent_greetings.
func (h *Handler) RecentGreetings(w http.ResponseWriter, r *http.Request) {
	req, err := greetings.ParseRecentRequest(params(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	page, err := h.reader.Recent(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.JSON(w, http.StatusOK, page)
}
