package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestParsePagination(t *testing.T) {
	app := fiber.New()
	var got Pagination
	app.Get("/", func(c *fiber.Ctx) error {
		got = ParsePagination(c)
		return c.SendStatus(fiber.StatusOK)
	})

	cases := []struct {
		query string
		want  Pagination
	}{
		{"", Pagination{Page: 1, Limit: 20, Offset: 0}},
		{"?page=3&limit=10", Pagination{Page: 3, Limit: 10, Offset: 20}},
		{"?page=2&limit=500", Pagination{Page: 2, Limit: 100, Offset: 100}},
		{"?page=-1&limit=-5", Pagination{Page: 1, Limit: 20, Offset: 0}},
		{"?page=abc&limit=xyz", Pagination{Page: 1, Limit: 20, Offset: 0}},
	}

	for _, tc := range cases {
		req := httptest.NewRequest("GET", "/"+tc.query, nil)
		if _, err := app.Test(req); err != nil {
			t.Fatalf("app.Test(%q): %v", tc.query, err)
		}
		if got != tc.want {
			t.Errorf("ParsePagination(%q) = %+v, want %+v", tc.query, got, tc.want)
		}
	}
}
