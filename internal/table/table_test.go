package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klytics/rpakit/internal/search"
)

func items() []search.Item {
	return []search.Item{
		{{Key: "title", Value: "<b>포켄스</b> 하네스"}, {Key: "lprice", Value: "15900"}, {Key: "mallName", Value: "펫몰"}},
		{{Key: "title", Value: "리드줄"}, {Key: "lprice", Value: "9900"}, {Key: "mallName", Value: "네이버"}},
		{{Key: "title", Value: "간식"}, {Key: "brand", Value: "포켄스"}},
	}
}

func TestFromItemsRankStartsAtOne(t *testing.T) {
	tbl := FromItems(items(), Options{})

	require.Equal(t, 3, tbl.Len())
	assert.Equal(t, RankColumn, tbl.Columns[0])
	for i, row := range tbl.Rows {
		assert.Equal(t, i+1, row[0])
	}
}

func TestFromItemsColumnUnionInOrder(t *testing.T) {
	tbl := FromItems(items(), Options{})

	assert.Equal(t, []string{RankColumn, "title", "lprice", "mallName", "brand"}, tbl.Columns)
	assert.Nil(t, tbl.Rows[2][2], "missing lprice should be nil")
	assert.Equal(t, "포켄스", tbl.Rows[2][4])
}

func TestFromItemsStripTags(t *testing.T) {
	tbl := FromItems(items(), Options{StripTags: true})
	assert.Equal(t, "포켄스 하네스", tbl.Rows[0][1])

	raw := FromItems(items(), Options{})
	assert.Equal(t, "<b>포켄스</b> 하네스", raw.Rows[0][1])
}

func TestFromItemsEmpty(t *testing.T) {
	tbl := FromItems(nil, Options{RankHeader: "rank"})
	assert.Equal(t, []string{"rank"}, tbl.Columns)
	assert.Zero(t, tbl.Len())
	assert.Len(t, tbl.Matrix(), 1)
}

func TestFromJSON(t *testing.T) {
	raw := []byte(`{"items":[{"title":"a","lprice":"100"},{"title":"b","lprice":"200"}]}`)
	tbl, err := FromJSON(raw, Options{})
	require.NoError(t, err)

	assert.Equal(t, 2, tbl.Len())
	assert.Equal(t, []any{"100", "200"}, tbl.Column("lprice"))
	assert.Nil(t, tbl.Column("missing"))
}

func TestMarshalRows(t *testing.T) {
	tbl := FromItems(items()[:1], Options{StripTags: true})
	s, err := tbl.MarshalRows()
	require.NoError(t, err)
	assert.Equal(t, `[["순위","title","lprice","mallName"],[1,"포켄스 하네스","15900","펫몰"]]`, s)
}

func TestStripTagsEntities(t *testing.T) {
	assert.Equal(t, `A & B "C"`, StripTags("<b>A</b> &amp; B &quot;C&quot;"))
}
