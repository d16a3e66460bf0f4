// Package template provides notification body template rendering.
//
// 지원하는 변수 형식:
//
//	{{match.id}}, {{match.other_name}}, {{match.other_major}}, {{match.created_at}}
//
//	{{event.id}}, {{event.type}}, {{event.at}}
package template

import (
	"strconv"
	"strings"
	"time"

	"github.com/cuceimatch/matchcore/internal/model"
)

// MatchData - 템플릿 렌더링에 사용할 Match 데이터
type MatchData struct {
	ID         int64
	OtherName  string
	OtherMajor string
	CreatedAt  time.Time
}

// EventData - 템플릿 렌더링에 사용할 Event 데이터
type EventData struct {
	ID   string
	Type string
	At   time.Time
}

// MatchDataFromModel - model.Match에서 MatchData 생성
func MatchDataFromModel(m model.Match) MatchData {
	d := MatchData{ID: m.ID, CreatedAt: m.CreatedAt}
	if m.OtherUser != nil {
		d.OtherName = m.OtherUser.FullName
		d.OtherMajor = m.OtherUser.Major
	}
	return d
}

func EventDataFromModel(evt model.Event) EventData {
	return EventData{ID: evt.ID, Type: string(evt.Type), At: evt.At}
}

// RenderBody - body 템플릿의 변수를 실제 값으로 치환
//
// nil로 전달된 항목의 변수는 빈 문자열로 치환됩니다.
// 값은 JSON 문자열 안에 들어가므로 따옴표와 역슬래시를 이스케이프합니다.
func RenderBody(body string, match *MatchData, event *EventData) string {
	pairs := make([]string, 0, 14)

	if match != nil {
		createdAt := ""
		if !match.CreatedAt.IsZero() {
			createdAt = match.CreatedAt.Format(time.RFC3339)
		}
		pairs = append(pairs,
			"{{match.id}}", strconv.FormatInt(match.ID, 10),
			"{{match.other_name}}", escape(match.OtherName),
			"{{match.other_major}}", escape(match.OtherMajor),
			"{{match.created_at}}", createdAt,
		)
	} else {
		pairs = append(pairs,
			"{{match.id}}", "",
			"{{match.other_name}}", "",
			"{{match.other_major}}", "",
			"{{match.created_at}}", "",
		)
	}

	if event != nil {
		pairs = append(pairs,
			"{{event.id}}", event.ID,
			"{{event.type}}", event.Type,
			"{{event.at}}", event.At.Format(time.RFC3339),
		)
	} else {
		pairs = append(pairs,
			"{{event.id}}", "",
			"{{event.type}}", "",
			"{{event.at}}", "",
		)
	}

	return strings.NewReplacer(pairs...).Replace(body)
}

var jsonEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`, "\t", `\t`)

func escape(s string) string {
	return jsonEscaper.Replace(s)
}
