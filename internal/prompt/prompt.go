// Package prompt renders the language-model prompts used by the workflows.
package prompt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
)

// CurriculumSystem is the system prompt for curriculum generation.
const CurriculumSystem = "당신은 교육 전문가입니다. 주어진 주제에 대한 상세한 강의 커리큘럼을 JSON 형식으로 생성해주세요."

var compareTmpl = template.Must(template.New("compare").Funcs(funcs).Parse(`너는 데이터분석 전문가야.
다음 두 상품 목록을 비교 분석해 변화 패턴을 도출해주세요:

prev_list(변경 전): {{ rows .Prev }}
now_list(변경 후): {{ rows .Now }}
{{- if .Stats }}

가격 통계:
{{ .Stats }}
{{- end }}

분석 요구사항:
1. 상품 정보의 구조적 변화(형식, 필드값 등) 파악
2. 상품 가격, 재고, 카테고리 등 주요 속성 변화 탐지
3. 쇼핑몰별 상품 분포 변화 분석
4. 브랜드/제조사 정보 변경 사항 확인
5. 새로 추가되거나 삭제된 상품 식별

결과물 요청사항:
- 변화의 핵심 패턴을 3-5개 포인트로 요약
- 구체적인 수치, 상품명, 쇼핑몰명을 포함하여 근거 제시
- 한글로 작성, 총 400-500자 이내로 간결하게 작성
- 마크다운, HTML 태그, 특수기호 사용 금지
- 실제 소비자에게 유용한 인사이트 중심으로 작성
`))

var newsTmpl = template.Must(template.New("news").Parse(`너는 뉴스 요약 전문가야.
다음 뉴스 내용을 요약해주세요:

뉴스 내용: {{ .News }}

요약 요구사항:
1. 주요 뉴스 주제 및 핵심 메시지 요약
2. 구체적인 수치, 고유명사, 키워드 포함
3. 소비자에게 유용한 인사이트 제공

결과물 요청사항:
- 한글로 작성, 총 300-400자 이내로 간결하게 작성
- 글머리를 활용하여 명확하고 간결한 요약 작성
- 마크다운, HTML 태그, 특수기호 사용 금지
`))

var curriculumTmpl = template.Must(template.New("curriculum").Parse(`다음 주제와 내용에 대한 {{ .Hours }}시간 강의 커리큘럼을 JSON 형식으로 생성해주세요.

주제: {{ .Topic }}
간략 내용: {{ .Description }}
총 강의 시간: {{ .Hours }}시간

다음 JSON 형식을 사용해주세요:
{
    "topic": "강의 주제",
    "description": "강의 설명",
    "total_hours": 총 강의 시간,
    "lectures": [
        {
            "title": "강의 제목",
            "content": "강의 내용 (3-4줄)",
            "duration": 소요 시간(분)
        }
    ]
}
`))

var funcs = template.FuncMap{
	"rows": func(rows [][]string) string {
		if len(rows) == 0 {
			return "[]"
		}
		b, err := json.Marshal(rows)
		if err != nil {
			return fmt.Sprint(rows)
		}
		return string(b)
	},
}

// Compare renders the list-comparison prompt. stats may be empty.
func Compare(prev, now [][]string, stats string) (string, error) {
	return render(compareTmpl, map[string]any{
		"Prev":  prev,
		"Now":   now,
		"Stats": strings.TrimSpace(stats),
	})
}

// NewsSummary renders the news-summary prompt around the raw search reply.
func NewsSummary(news string) (string, error) {
	return render(newsTmpl, map[string]any{"News": news})
}

// Curriculum renders the user prompt for a curriculum of the given length.
func Curriculum(topic, description string, hours int) (string, error) {
	if strings.TrimSpace(topic) == "" {
		return "", fmt.Errorf("curriculum topic is empty")
	}
	if hours <= 0 {
		return "", fmt.Errorf("total hours must be positive, got %d", hours)
	}
	return render(curriculumTmpl, map[string]any{
		"Topic":       topic,
		"Description": description,
		"Hours":       hours,
	})
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("could not render %s prompt: %w", t.Name(), err)
	}
	return buf.String(), nil
}
