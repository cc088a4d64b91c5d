package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompare(t *testing.T) {
	prev := [][]string{{"순위", "title"}, {"1", "사료 A"}}
	now := [][]string{{"순위", "title"}, {"1", "사료 B"}}

	got, err := Compare(prev, now, "")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(got, "너는 데이터분석 전문가야."))
	assert.Contains(t, got, `prev_list(변경 전): [["순위","title"],["1","사료 A"]]`)
	assert.Contains(t, got, `now_list(변경 후): [["순위","title"],["1","사료 B"]]`)
	assert.Contains(t, got, "5. 새로 추가되거나 삭제된 상품 식별")
	assert.Contains(t, got, "400-500자")
	assert.NotContains(t, got, "가격 통계")
}

func TestCompareWithStats(t *testing.T) {
	got, err := Compare(nil, nil, "lprice: n=2 min=100\n")
	require.NoError(t, err)
	assert.Contains(t, got, "prev_list(변경 전): []")
	assert.Contains(t, got, "가격 통계:\nlprice: n=2 min=100\n")
}

func TestNewsSummary(t *testing.T) {
	got, err := NewsSummary(`{"items":[{"title":"뉴스"}]}`)
	require.NoError(t, err)
	assert.Contains(t, got, `뉴스 내용: {"items":[{"title":"뉴스"}]}`)
	assert.Contains(t, got, "300-400자")
}

func TestCurriculum(t *testing.T) {
	got, err := Curriculum("Go 入門", "기초 문법", 6)
	require.NoError(t, err)
	assert.Contains(t, got, "6시간 강의 커리큘럼")
	assert.Contains(t, got, "주제: Go 入門")
	assert.Contains(t, got, `"lectures": [`)

	_, err = Curriculum(" ", "", 6)
	assert.Error(t, err)
	_, err = Curriculum("Go", "", 0)
	assert.Error(t, err)
}
