package entra

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/praetorian-inc/janus-framework/pkg/chain"
	"github.com/praetorian-inc/janus-framework/pkg/chain/cfg"

	"github.com/entrascope/entrascope/internal/message"
	"github.com/entrascope/entrascope/pkg/graph"
	"github.com/entrascope/entrascope/pkg/links/options"
	"github.com/entrascope/entrascope/pkg/outputters"
	"github.com/entrascope/entrascope/pkg/types"
)

// GuestRecord is one stale guest with the outcome of its removal attempt.
type GuestRecord struct {
	graph.GuestUser
	DaysSinceInvite int    `json:"daysSinceInvite"`
	Removed         bool   `json:"removed"`
	RemovalError    string `json:"removalError,omitempty"`
}

// GuestReport is the full result of one hygiene run.
type GuestReport struct {
	TotalGuests int           `json:"totalGuests"`
	Stale       []GuestRecord `json:"stale"`
	Removed     int           `json:"removed"`
	Failed      int           `json:"failed"`
}

// PartialWriteFailure reports a batch of deletes where some records failed.
// The batch always runs to completion; this error carries the tallies.
type PartialWriteFailure struct {
	Attempted int
	Succeeded int
	Failed    int
}

func (e *PartialWriteFailure) Error() string {
	return fmt.Sprintf("removed %d of %d guests, %d failed", e.Succeeded, e.Attempted, e.Failed)
}

// GuestReportLink lists guest accounts and reports the stale ones: invites
// still pending acceptance past the staleness window. With remove set it
// deletes each stale guest individually, recording per-record outcomes and
// never stopping at the first failure.
type GuestReportLink struct {
	*chain.Base
}

func NewGuestReportLink(configs ...cfg.Config) chain.Link {
	l := &GuestReportLink{}
	l.Base = chain.NewBase(l, configs...)
	return l
}

func (l *GuestReportLink) Params() []cfg.Param {
	return []cfg.Param{
		options.EntraStaleGuestDays(),
		options.EntraRemoveGuests(),
		options.OutputDir(),
	}
}

func (l *GuestReportLink) Process(any) error {
	staleDays, err := cfg.As[int](l.Arg("stale-days"))
	if err != nil {
		staleDays = 90
	}
	remove, _ := cfg.As[bool](l.Arg("remove"))

	client, err := graph.NewClient()
	if err != nil {
		return err
	}

	guests, err := client.ListGuestUsers(l.Context())
	if err != nil {
		return err
	}

	report := buildGuestReport(guests, staleDays, time.Now().UTC())

	if remove {
		l.removeStaleGuests(client, report)
	}

	if err := l.sendReport(report); err != nil {
		return err
	}

	if report.Failed > 0 {
		return &PartialWriteFailure{
			Attempted: len(report.Stale),
			Succeeded: report.Removed,
			Failed:    report.Failed,
		}
	}
	return nil
}

func buildGuestReport(guests []graph.GuestUser, staleDays int, now time.Time) *GuestReport {
	report := &GuestReport{TotalGuests: len(guests)}
	cutoff := now.AddDate(0, 0, -staleDays)

	for _, guest := range guests {
		if guest.ExternalUserState != "PendingAcceptance" {
			continue
		}
		if guest.CreatedDateTime.IsZero() || guest.CreatedDateTime.After(cutoff) {
			continue
		}
		report.Stale = append(report.Stale, GuestRecord{
			GuestUser:       guest,
			DaysSinceInvite: int(now.Sub(guest.CreatedDateTime).Hours() / 24),
		})
	}

	return report
}

func (l *GuestReportLink) removeStaleGuests(client *graph.Client, report *GuestReport) {
	for i := range report.Stale {
		record := &report.Stale[i]
		if err := client.DeleteUser(l.Context(), record.ID); err != nil {
			record.RemovalError = err.Error()
			report.Failed++
			slog.Warn("Failed to remove stale guest", "upn", record.UserPrincipalName, "error", err)
			continue
		}
		record.Removed = true
		report.Removed++
	}

	if report.Failed > 0 {
		message.Warning("Removed %d of %d stale guests, %d failed", report.Removed, len(report.Stale), report.Failed)
	} else if report.Removed > 0 {
		message.Success("Removed %d stale guests", report.Removed)
	}
}

func (l *GuestReportLink) sendReport(report *GuestReport) error {
	outputDir, _ := cfg.As[string](l.Arg("output"))

	jsonPath := filepath.Join(outputDir, "guest-report.json")
	if err := l.Send(outputters.NewNamedOutputData(report, jsonPath)); err != nil {
		return fmt.Errorf("failed to send JSON output: %w", err)
	}

	table := types.MarkdownTable{
		TableHeading: fmt.Sprintf("Stale Guest Accounts (%d of %d guests)", len(report.Stale), report.TotalGuests),
		Headers:      []string{"Guest", "UPN", "Invited", "Days", "Removed"},
	}
	for _, record := range report.Stale {
		removed := ""
		if record.Removed {
			removed = "yes"
		} else if record.RemovalError != "" {
			removed = "failed"
		}
		table.AddRow(
			record.DisplayName,
			record.UserPrincipalName,
			record.CreatedDateTime.Format("2006-01-02"),
			fmt.Sprintf("%d", record.DaysSinceInvite),
			removed,
		)
	}

	if err := l.Send(table); err != nil {
		return fmt.Errorf("failed to send console table: %w", err)
	}

	mdPath := filepath.Join(outputDir, "guest-report.md")
	return l.Send(outputters.NewNamedOutputData(table, mdPath))
}
