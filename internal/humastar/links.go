package humastar

import (
	"fmt"
	"path"
	"slices"
	"strings"
	"sync"

	"github.com/danielgtaylor/huma/v2"
)

// LinkOptions controls which relations Build derives.
type LinkOptions struct {
	EntryPoint string   // collection that links to every other one, e.g. "/health"
	Search     string   // optional target of rel="search"
	SkipTags   []string // operations tagged with any of these get no links
}

// Links holds RFC 8288 Link header values per operation path, derived from
// the OpenAPI document. Install Transformer in the Huma config before the API
// is created and call Build once every route is registered.
type Links struct {
	mu     sync.RWMutex
	byPath map[string][]string
}

// NewLinks returns an empty link set.
func NewLinks() *Links {
	return &Links{byPath: map[string][]string{}}
}

// Build walks the registered paths and derives collection, item, entry point
// and describedby relations, then documents them as OpenAPI response links.
func (l *Links) Build(api huma.API, opts LinkOptions) {
	oapi := api.OpenAPI()
	byPath := map[string][]string{}
	add := func(from, to, rel string) {
		val := fmt.Sprintf(`<%s>; rel="%s"`, to, rel)
		if !slices.Contains(byPath[from], val) {
			byPath[from] = append(byPath[from], val)
		}
	}

	var collections, items []string
	for p, pi := range oapi.Paths {
		if slices.ContainsFunc(primaryTags(pi), func(t string) bool { return slices.Contains(opts.SkipTags, t) }) {
			continue
		}
		if strings.Contains(p, "{") {
			items = append(items, p)
		} else {
			collections = append(collections, p)
		}
	}
	slices.Sort(collections)
	slices.Sort(items)

	// item -> its parent collection
	for _, item := range items {
		parent := path.Dir(item)
		if _, ok := oapi.Paths[parent]; ok {
			add(item, parent, "collection")
			add(item, parent, "up")
		}
		if pi := oapi.Paths[item]; pi.Put != nil || pi.Patch != nil {
			add(item, item, "edit")
		}
	}

	// collection -> item template, entry point and search
	for _, coll := range collections {
		for _, item := range items {
			if path.Dir(item) == coll {
				add(coll, item, "item")
			}
		}
		if oapi.Paths[coll].Post != nil {
			add(coll, coll, "create-form")
		}
		if opts.EntryPoint != "" && coll != opts.EntryPoint {
			add(coll, opts.EntryPoint, "up")
		}
		if opts.Search != "" && coll != opts.Search {
			add(coll, opts.Search, "search")
		}
	}

	if ep := opts.EntryPoint; ep != "" {
		for _, coll := range collections {
			if coll != ep {
				add(ep, coll, lastSegment(coll))
			}
		}
		add(ep, "/openapi.json", "describedby")
		add(ep, "/openapi.json", "service-desc")
		add(ep, "/docs", "service-doc")
	}

	for _, p := range slices.Concat(collections, items) {
		if ref := responseSchemaRef(oapi.Paths[p]); ref != "" {
			add(p, "/openapi.json#/components/schemas/"+ref, "describedby")
		}
	}

	for p, headers := range byPath {
		for _, op := range operationsOf(oapi.Paths[p]) {
			if op != nil {
				injectResponseLinks(op, headers)
			}
		}
	}

	l.mu.Lock()
	l.byPath = byPath
	l.mu.Unlock()
}

// For returns the Link header values of an operation path.
func (l *Links) For(opPath string) []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.byPath[opPath]
}

// Transformer returns a Huma Transformer that writes the derived links, a
// self link on item paths, and any pagination or action links the response
// body provides.
func (l *Links) Transformer() huma.Transformer {
	return func(ctx huma.Context, status string, v any) (any, error) {
		op := ctx.Operation()
		if op == nil {
			return v, nil
		}

		for _, link := range l.For(op.Path) {
			ctx.AppendHeader("Link", link)
		}
		if strings.Contains(op.Path, "{") {
			ctx.AppendHeader("Link", fmt.Sprintf(`<%s>; rel="self"`, ctx.URL().Path))
		}
		if p, ok := v.(Pager); ok {
			for _, link := range p.PaginationLinks(ctx.URL().Path) {
				ctx.AppendHeader("Link", link)
			}
		}
		if a, ok := v.(Actor); ok {
			for _, action := range a.Actions() {
				ctx.AppendHeader("Link", action.LinkHeader())
			}
		}
		return v, nil
	}
}

func primaryTags(pi *huma.PathItem) []string {
	for _, op := range operationsOf(pi) {
		if op != nil && len(op.Tags) > 0 {
			return op.Tags
		}
	}
	return nil
}

func operationsOf(pi *huma.PathItem) []*huma.Operation {
	if pi == nil {
		return nil
	}
	return []*huma.Operation{pi.Get, pi.Post, pi.Put, pi.Patch, pi.Delete}
}

func lastSegment(p string) string {
	return path.Base(strings.TrimRight(p, "/"))
}

// injectResponseLinks documents headers as Link objects on the operation's
// success response.
func injectResponseLinks(op *huma.Operation, headers []string) {
	var resp *huma.Response
	for code, r := range op.Responses {
		if strings.HasPrefix(code, "2") {
			resp = r
			break
		}
	}
	if resp == nil {
		return
	}
	if resp.Links == nil {
		resp.Links = map[string]*huma.Link{}
	}
	for _, h := range headers {
		rel, href := parseLinkHeader(h)
		if rel == "" {
			continue
		}
		resp.Links[rel] = &huma.Link{
			OperationRef: href,
			Description:  "Related: " + rel,
		}
	}
}

func responseSchemaRef(pi *huma.PathItem) string {
	if pi == nil || pi.Get == nil {
		return ""
	}
	for code, resp := range pi.Get.Responses {
		if !strings.HasPrefix(code, "2") || resp.Content == nil {
			continue
		}
		for _, mt := range resp.Content {
			if mt.Schema != nil && mt.Schema.Ref != "" {
				return path.Base(mt.Schema.Ref)
			}
		}
	}
	return ""
}

// parseLinkHeader splits `<url>; rel="name"`.
func parseLinkHeader(h string) (rel, href string) {
	target, params, ok := strings.Cut(h, ";")
	if !ok {
		return "", ""
	}
	href = strings.Trim(strings.TrimSpace(target), "<>")
	params = strings.TrimSpace(params)
	if r, ok := strings.CutPrefix(params, `rel="`); ok {
		rel = strings.TrimSuffix(r, `"`)
	}
	return rel, href
}
