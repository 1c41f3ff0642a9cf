package handlers

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/axis-inc/goal-engine/pkg/apperrors"
	"github.com/axis-inc/goal-engine/pkg/models"
)

// pathUUID parses the named path segment as a UUID.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, apperrors.NewValidation("invalid %s: must be a UUID", name)
	}
	return id, nil
}

// pageRequest reads pagination and sorting from the query string. Missing
// or malformed numbers fall back to defaults; sort keys are validated
// downstream against per-entity whitelists.
func pageRequest(r *http.Request) models.PageRequest {
	q := r.URL.Query()

	page := models.PageRequest{
		SortBy:  q.Get("sortBy"),
		SortDir: q.Get("sortDir"),
	}
	if n, err := strconv.Atoi(q.Get("page")); err == nil {
		page.Number = n
	}
	if n, err := strconv.Atoi(q.Get("size")); err == nil {
		page.Size = n
	}

	return page
}
