package humastar

import (
	"context"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSignals(t *testing.T) {
	s, err := ParseSignals([]byte(`{"lat":48.1,"width":"6.5","mode":"add","bad":"x","flag":true,"n":3}`))
	require.NoError(t, err)

	lat, ok := s.Float("lat")
	assert.True(t, ok)
	assert.InDelta(t, 48.1, lat, 1e-9)

	w, ok := s.Float("width")
	assert.True(t, ok)
	assert.InDelta(t, 6.5, w, 1e-9)

	_, ok = s.Float("bad")
	assert.False(t, ok)
	_, ok = s.Float("missing")
	assert.False(t, ok)

	assert.Equal(t, "add", s.String("mode"))
	assert.Equal(t, 3, s.Int("n"))
	assert.True(t, s.Bool("flag"))
	assert.True(t, s.Has("mode"))
	assert.False(t, s.Has("query"))

	empty, err := ParseSignals(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = ParseSignals([]byte("{"))
	assert.Error(t, err)
}

func TestPaginate(t *testing.T) {
	items := []int{0, 1, 2, 3, 4, 5, 6}

	page := Paginate(items, 2, 3)
	assert.Equal(t, []int{2, 3, 4}, page.Data)
	assert.Equal(t, 7, page.Total)

	assert.Empty(t, Paginate(items, 10, 3).Data)
	assert.Equal(t, DefaultPageSize, Paginate(items, 0, 0).Limit)
	assert.Len(t, Paginate(items, -4, 0).Data, 7)
}

func TestPaginationLinks(t *testing.T) {
	page := PageBody[int]{Total: 7, Offset: 3, Limit: 3}
	assert.Equal(t, []string{
		`</r?offset=0&limit=3>; rel="first"`,
		`</r?offset=0&limit=3>; rel="prev"`,
		`</r?offset=6&limit=3>; rel="next"`,
		`</r?offset=6&limit=3>; rel="last"`,
	}, page.PaginationLinks("/r"))

	empty := PageBody[int]{Limit: 3}
	assert.Equal(t, []string{
		`</r?offset=0&limit=3>; rel="first"`,
		`</r?offset=0&limit=3>; rel="last"`,
	}, empty.PaginationLinks("/r"))
}

func TestActionsFor(t *testing.T) {
	actions := ActionsFor([]ActionDef{
		{Rel: "delete", Pattern: "/api/v1/sessions/%s/markers/%d", Method: http.MethodDelete, Title: "Remove marker"},
	}, "abc", 2)
	require.Len(t, actions, 1)
	assert.Equal(t, `</api/v1/sessions/abc/markers/2>; rel="delete"; method="DELETE"; title="Remove marker"`, actions[0].LinkHeader())
}

type thing struct {
	ID string `json:"id"`
}

type thingOutput struct {
	Body thing
}

type thingsOutput struct {
	Body PageBody[thing]
}

func TestLinks_Transformer(t *testing.T) {
	links := NewLinks()
	cfg := huma.DefaultConfig("test", "1.0.0")
	cfg.Transformers = append(cfg.Transformers, links.Transformer())
	api := humatest.Wrap(t, humago.New(http.NewServeMux(), cfg))

	huma.Get(api, "/health", func(ctx context.Context, _ *struct{}) (*struct{}, error) {
		return &struct{}{}, nil
	}, huma.OperationTags("health"))
	huma.Get(api, "/things", func(ctx context.Context, in *struct {
		Offset int `query:"offset"`
		Limit  int `query:"limit"`
	}) (*thingsOutput, error) {
		return &thingsOutput{Body: Paginate([]thing{{ID: "a"}, {ID: "b"}, {ID: "c"}}, in.Offset, in.Limit)}, nil
	}, huma.OperationTags("things"))
	huma.Get(api, "/things/{id}", func(ctx context.Context, in *struct {
		ID string `path:"id"`
	}) (*thingOutput, error) {
		return &thingOutput{Body: thing{ID: in.ID}}, nil
	}, huma.OperationTags("things"))
	huma.Get(api, "/ui/things", func(ctx context.Context, _ *struct{}) (*struct{}, error) {
		return &struct{}{}, nil
	}, huma.OperationTags("editor"))

	links.Build(api, LinkOptions{EntryPoint: "/health", SkipTags: []string{"editor"}})

	assert.Contains(t, links.For("/health"), `</things>; rel="things"`)
	assert.Contains(t, links.For("/health"), `</docs>; rel="service-doc"`)
	assert.Contains(t, links.For("/things"), `</things/{id}>; rel="item"`)
	assert.Contains(t, links.For("/things/{id}"), `</things>; rel="collection"`)
	assert.Empty(t, links.For("/ui/things"))

	resp := api.Get("/things?limit=2")
	require.Equal(t, http.StatusOK, resp.Code)
	header := resp.Result().Header.Values("Link")
	assert.Contains(t, header, `</things?offset=2&limit=2>; rel="next"`)
	assert.Contains(t, header, `</health>; rel="up"`)

	resp = api.Get("/things/b")
	assert.Contains(t, resp.Result().Header.Values("Link"), `</things/b>; rel="self"`)
}
