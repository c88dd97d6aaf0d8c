// Copyright (C) 2025 the vowlist maintainers
// See root-dir/LICENSE for more information

// Package export renders guest lists as downloadable tabular files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/vowlist/core/internal/model"
)

var csvHeader = []string{
	"ID", "Responsible", "Adults", "Adult Names",
	"Children", "Child Details", "Phone", "Confirmed At",
}

// WriteGuestsCSV streams the guest list of one wedding as CSV, newest
// submission first (callers pass the list in store order).
func WriteGuestsCSV(w io.Writer, guests []*model.Guest) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, guest := range guests {
		confirmed := ""
		if guest.CreatedAt != nil {
			confirmed = guest.CreatedAt.Format(time.RFC3339)
		}
		record := []string{
			guest.ID.String(),
			guest.Name,
			strconv.Itoa(guest.Adults),
			strings.Join(guest.AdultNames, ", "),
			strconv.Itoa(guest.Children),
			childDetails(guest.ChildrenDetails),
			guest.Phone,
			confirmed,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func childDetails(details []model.ChildDetail) string {
	parts := make([]string, 0, len(details))
	for _, child := range details {
		age := "under 6"
		if child.Over6 {
			age = "over 6"
		}
		parts = append(parts, fmt.Sprintf("%s (%s)", child.Name, age))
	}
	return strings.Join(parts, ", ")
}

// Filename builds the download name from the couple's names.
func Filename(wedding *model.Wedding) string {
	name := fmt.Sprintf("guests-%s-%s.csv", wedding.BrideName, wedding.GroomName)
	return strings.ToLower(strings.Join(strings.Fields(name), "-"))
}
