package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestFromContext_Defaults(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	p := FromContext(c, Search)

	if p.Limit != Search.DefaultLimit {
		t.Errorf("expected default limit %d, got %d", Search.DefaultLimit, p.Limit)
	}
	if p.Offset != 0 {
		t.Errorf("expected default offset 0, got %d", p.Offset)
	}
}

func TestFromContext_CustomValues(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?limit=75&offset=10", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	p := FromContext(c, Search)

	if p.Limit != 75 {
		t.Errorf("expected limit 75, got %d", p.Limit)
	}
	if p.Offset != 10 {
		t.Errorf("expected offset 10, got %d", p.Offset)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		limit  string
		offset string
		bounds Bounds
		want   Params
	}{
		{"empty", "", "", Search, Params{Limit: 50, Offset: 0}},
		{"garbage", "abc", "xyz", Search, Params{Limit: 50, Offset: 0}},
		{"search max", "5000", "0", Search, Params{Limit: 500, Offset: 0}},
		{"ranking max", "500", "0", Ranking, Params{Limit: 100, Offset: 0}},
		{"zero limit clamps up", "0", "0", Search, Params{Limit: 1, Offset: 0}},
		{"negative limit clamps up", "-4", "0", Ranking, Params{Limit: 1, Offset: 0}},
		{"negative offset", "10", "-5", Search, Params{Limit: 10, Offset: 0}},
		{"large offset kept", "10", "9000000", Search, Params{Limit: 10, Offset: 9000000}},
		{"fractional limit ignored", "2.5", "1", Search, Params{Limit: 50, Offset: 1}},
		{"whitespace trimmed", " 20 ", " 3 ", Ranking, Params{Limit: 20, Offset: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Parse(tt.limit, tt.offset, tt.bounds); got != tt.want {
				t.Errorf("Parse(%q, %q) = %+v, want %+v", tt.limit, tt.offset, got, tt.want)
			}
		})
	}
}

func TestWindow(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	tests := []struct {
		name string
		p    Params
		want []int
	}{
		{"first page", Params{Limit: 2, Offset: 0}, []int{1, 2}},
		{"middle", Params{Limit: 2, Offset: 2}, []int{3, 4}},
		{"partial last", Params{Limit: 2, Offset: 4}, []int{5}},
		{"past end", Params{Limit: 2, Offset: 9}, []int{}},
		{"unbounded", Params{Limit: 0, Offset: 1}, []int{2, 3, 4, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Window(items, tt.p)
			if len(got) != len(tt.want) {
				t.Fatalf("Window = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("Window = %v, want %v", got, tt.want)
				}
			}
		})
	}
}
