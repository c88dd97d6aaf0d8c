package export

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/vowlist/core/internal/model"
)

func TestWriteGuestsCSV(t *testing.T) {
	confirmed := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	guests := []*model.Guest{
		{
			ID:       uuid.MustParse("0eac703a-40f3-4318-ae96-f28e026a23c6"),
			Name:     "Carlos",
			Adults:   2,
			Children: 2,
			AdultNames: []string{
				"Carlos", "Julia",
			},
			ChildrenDetails: []model.ChildDetail{
				{Name: "Pedro", Over6: true},
				{Name: "Lia"},
			},
			Phone:     "11999990000",
			CreatedAt: &confirmed,
		},
	}

	var sb strings.Builder
	if err := WriteGuestsCSV(&sb, guests); err != nil {
		t.Fatalf("write: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(sb.String())).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("rows: got %d, want 2", len(records))
	}
	if records[0][1] != "Responsible" {
		t.Errorf("header: got %q", records[0][1])
	}

	row := records[1]
	if row[1] != "Carlos" {
		t.Errorf("name: got %q", row[1])
	}
	if row[3] != "Carlos, Julia" {
		t.Errorf("adult names: got %q", row[3])
	}
	if row[5] != "Pedro (over 6), Lia (under 6)" {
		t.Errorf("child details: got %q", row[5])
	}
	if row[7] != "2026-05-10T12:00:00Z" {
		t.Errorf("confirmed at: got %q", row[7])
	}
}

func TestWriteGuestsCSV_Empty(t *testing.T) {
	var sb strings.Builder
	if err := WriteGuestsCSV(&sb, nil); err != nil {
		t.Fatalf("write: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected only the header, got %d lines", len(lines))
	}
}

func TestFilename(t *testing.T) {
	tt := []struct {
		name    string
		wedding model.Wedding
		want    string
	}{
		{
			name:    "plain",
			wedding: model.Wedding{BrideName: "Ana", GroomName: "Bruno"},
			want:    "guests-ana-bruno.csv",
		},
		{
			name:    "spaces fold",
			wedding: model.Wedding{BrideName: "Maria Clara", GroomName: "Joao Pedro"},
			want:    "guests-maria-clara-joao-pedro.csv",
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			if got := Filename(&tc.wedding); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}
