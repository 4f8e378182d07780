package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"solifin/internal/query"
)

type pagination struct {
	page     int
	pageSize int
	limit    int
	offset   int
}

func parsePositiveInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%s must be a positive integer", key)
	}
	return n, nil
}

func parsePaginationParams(r *http.Request, defaultPageSize, maxPageSize int) (pagination, error) {
	page, err := parsePositiveInt(r, "page", 1)
	if err != nil {
		return pagination{}, err
	}
	size, err := parsePositiveInt(r, "page_size", defaultPageSize)
	if err != nil {
		return pagination{}, err
	}
	if size > maxPageSize {
		return pagination{}, fmt.Errorf("page_size must be at most %d", maxPageSize)
	}
	return pagination{page: page, pageSize: size, limit: size, offset: (page - 1) * size}, nil
}

type paginationMeta struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func writePaginatedResponse(w http.ResponseWriter, status int, data any, page, pageSize, total int) {
	writeJSON(w, status, map[string]any{
		"data": data,
		"pagination": paginationMeta{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: query.TotalPages(total, pageSize),
		},
	})
}
