package paging

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		page, limit, def int
		wantPage         int
		wantLimit        int
	}{
		{0, 0, 12, 1, 12},
		{-3, -1, 20, 1, 20},
		{2, 5, 10, 2, 5},
		{1, 1000, 10, 1, MaxLimit},
	}
	for _, tc := range cases {
		p, l := Normalize(tc.page, tc.limit, tc.def)
		assert.Equal(t, tc.wantPage, p)
		assert.Equal(t, tc.wantLimit, l)
	}
}

func TestFromQuery_IgnoresGarbage(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/pets?page=abc&limit=7", nil)
	p, l := FromQuery(r, DefaultPetsLimit)
	assert.Equal(t, 1, p)
	assert.Equal(t, 7, l)
}
