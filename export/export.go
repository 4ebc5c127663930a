// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package export writes voter lists and the activity log as CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/danielhkuo/ballotbox/models"
)

var (
	voterHeader    = []string{"id", "full_name", "email", "registration_id", "active", "created_at"}
	activityHeader = []string{"id", "user_id", "action", "details", "created_at"}
)

// WriteVoters writes one row per profile
func WriteVoters(w io.Writer, voters []models.Profile) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(voterHeader); err != nil {
		return fmt.Errorf("write voters header: %w", err)
	}
	for _, p := range voters {
		row := []string{
			p.ID,
			cell(p.FullName),
			cell(p.Email),
			cell(deref(p.RegistrationID)),
			strconv.FormatBool(p.Active),
			timestamp(p.CreatedAt),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write voter %s: %w", p.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteActivity writes one row per log entry. The IP hash is never exported.
func WriteActivity(w io.Writer, logs []models.ActivityLog) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(activityHeader); err != nil {
		return fmt.Errorf("write activity header: %w", err)
	}
	for _, a := range logs {
		row := []string{
			a.ID,
			deref(a.UserID),
			a.Action,
			cell(a.Details),
			timestamp(a.CreatedAt),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write activity %s: %w", a.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Filename names an export file, e.g. voters-20250301.csv
func Filename(kind string, now time.Time) string {
	return kind + "-" + now.UTC().Format("20060102") + ".csv"
}

// cell neutralizes values a spreadsheet would evaluate as a formula
func cell(s string) string {
	if s != "" && strings.ContainsRune("=+-@", rune(s[0])) {
		return "'" + s
	}
	return s
}

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
