package template

import (
	"testing"
	"time"

	"github.com/cuceimatch/matchcore/internal/model"
)

func TestRenderBody(t *testing.T) {
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	match := MatchDataFromModel(model.Match{
		ID:        42,
		OtherUser: &model.Candidate{FullName: `Ana "La" Ruiz`, Major: "INCO"},
		CreatedAt: created,
	})
	event := EventData{ID: "evt-1", Type: string(model.EventMatchSurfaced), At: created}

	tests := []struct {
		name  string
		body  string
		match *MatchData
		event *EventData
		want  string
	}{
		{
			name:  "match and event",
			body:  `{"text":"{{match.other_name}} ({{match.id}}) {{event.type}}"}`,
			match: &match,
			event: &event,
			want:  `{"text":"Ana \"La\" Ruiz (42) match.surfaced"}`,
		},
		{
			name:  "created at",
			body:  "{{match.created_at}}|{{match.other_major}}",
			match: &match,
			want:  "2025-03-01T12:00:00Z|INCO",
		},
		{
			name: "nil data renders empty",
			body: "[{{match.id}}][{{event.id}}]",
			want: "[][]",
		},
		{
			name:  "unknown variables untouched",
			body:  "{{match.unknown}}",
			match: &match,
			want:  "{{match.unknown}}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RenderBody(tt.body, tt.match, tt.event)
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestMatchDataFromModelWithoutOtherUser(t *testing.T) {
	d := MatchDataFromModel(model.Match{ID: 7})
	if d.ID != 7 || d.OtherName != "" || d.OtherMajor != "" {
		t.Fatalf("unexpected data: %+v", d)
	}
}
