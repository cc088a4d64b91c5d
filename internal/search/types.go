package search

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Kind is a search vertical, used as the last path segment of the endpoint.
type Kind string

// Search verticals supported by the API.
const (
	KindBlog        Kind = "blog"
	KindNews        Kind = "news"
	KindBook        Kind = "book"
	KindEncyc       Kind = "encyc"
	KindCafeArticle Kind = "cafearticle"
	KindKin         Kind = "kin"
	KindWeb         Kind = "webkr"
	KindImage       Kind = "image"
	KindShop        Kind = "shop"
	KindDoc         Kind = "doc"
	KindLocal       Kind = "local"
)

var kinds = map[Kind]bool{
	KindBlog: true, KindNews: true, KindBook: true, KindEncyc: true,
	KindCafeArticle: true, KindKin: true, KindWeb: true, KindImage: true,
	KindShop: true, KindDoc: true, KindLocal: true,
}

var sorts = map[string]bool{"sim": true, "date": true, "asc": true, "dsc": true}

// Request describes one search call.
type Request struct {
	Kind    Kind
	Query   string
	Display int
	Start   int
	Sort    string
}

// Validate checks the request against the API's documented limits.
func (r Request) Validate() error {
	if !kinds[r.Kind] {
		return fmt.Errorf("unknown search kind %q", r.Kind)
	}
	if strings.TrimSpace(r.Query) == "" {
		return fmt.Errorf("search query is empty")
	}
	if r.Display != 0 && (r.Display < 1 || r.Display > 100) {
		return fmt.Errorf("display must be between 1 and 100, got %d", r.Display)
	}
	if r.Start != 0 && (r.Start < 1 || r.Start > 1000) {
		return fmt.Errorf("start must be between 1 and 1000, got %d", r.Start)
	}
	if r.Sort != "" && !sorts[r.Sort] {
		return fmt.Errorf("sort must be one of sim, date, asc, dsc, got %q", r.Sort)
	}
	return nil
}

// Field is one key/value pair of a result item.
type Field struct {
	Key   string
	Value any
}

// Item is a result entry with its fields in the order the API sent them.
type Item []Field

// Get returns the value stored under key.
func (it Item) Get(key string) (any, bool) {
	for _, f := range it {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// String returns the value under key formatted as text, or "".
func (it Item) String(key string) string {
	v, ok := it.Get(key)
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

// Response is a parsed search result.
type Response struct {
	LastBuildDate string
	Total         int
	Start         int
	Display       int
	Items         []Item
	Raw           []byte
}

// ParseResponse decodes a raw API body. Item field order is preserved.
func ParseResponse(body []byte) (*Response, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("search response is not valid JSON")
	}

	root := gjson.ParseBytes(body)
	resp := &Response{
		LastBuildDate: root.Get("lastBuildDate").String(),
		Total:         int(root.Get("total").Int()),
		Start:         int(root.Get("start").Int()),
		Display:       int(root.Get("display").Int()),
		Raw:           body,
	}

	root.Get("items").ForEach(func(_, item gjson.Result) bool {
		var fields Item
		item.ForEach(func(key, value gjson.Result) bool {
			fields = append(fields, Field{Key: key.String(), Value: value.Value()})
			return true
		})
		resp.Items = append(resp.Items, fields)
		return true
	})

	return resp, nil
}
