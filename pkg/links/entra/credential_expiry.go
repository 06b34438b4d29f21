package entra

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/praetorian-inc/janus-framework/pkg/chain"
	"github.com/praetorian-inc/janus-framework/pkg/chain/cfg"

	"github.com/entrascope/entrascope/pkg/graph"
	"github.com/entrascope/entrascope/pkg/links/options"
	"github.com/entrascope/entrascope/pkg/outputters"
	"github.com/entrascope/entrascope/pkg/types"
)

// ExpiringCredential is one app credential within the expiry window.
type ExpiringCredential struct {
	Application    string    `json:"application"`
	AppID          string    `json:"appId"`
	CredentialID   string    `json:"credentialId"`
	CredentialName string    `json:"credentialName,omitempty"`
	Type           string    `json:"type"`
	EndDate        time.Time `json:"endDateTime"`
	DaysRemaining  int       `json:"daysRemaining"`
	Expired        bool      `json:"expired"`
}

// CredentialExpiryScannerLink lists app registrations and fans them out over
// a bounded worker pool. Each worker accumulates its own result slice; the
// coordinator merges after every worker has finished, so no result bag is
// shared while workers run.
type CredentialExpiryScannerLink struct {
	*chain.Base
}

func NewCredentialExpiryScannerLink(configs ...cfg.Config) chain.Link {
	l := &CredentialExpiryScannerLink{}
	l.Base = chain.NewBase(l, configs...)
	return l
}

func (l *CredentialExpiryScannerLink) Params() []cfg.Param {
	return []cfg.Param{
		options.EntraWorkerCount(),
		options.EntraExpiryThresholdDays(),
	}
}

func (l *CredentialExpiryScannerLink) Process(any) error {
	workers, err := cfg.As[int](l.Arg("workers"))
	if err != nil || workers < 1 {
		workers = 5
	}
	thresholdDays, err := cfg.As[int](l.Arg("threshold-days"))
	if err != nil {
		thresholdDays = 30
	}

	client, err := graph.NewClient()
	if err != nil {
		return err
	}

	apps, err := client.ListApplications(l.Context())
	if err != nil {
		return err
	}

	records := scanCredentials(apps, workers, thresholdDays, time.Now().UTC())

	slog.Info("Scanned application credentials",
		"applications", len(apps), "expiring", len(records), "threshold_days", thresholdDays)

	return l.Send(records)
}

func scanCredentials(apps []graph.Application, workers, thresholdDays int, now time.Time) []ExpiringCredential {
	if workers > len(apps) {
		workers = len(apps)
	}
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan graph.Application)
	perWorker := make([][]ExpiringCredential, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			for app := range jobs {
				perWorker[slot] = append(perWorker[slot], expiringCredentials(app, thresholdDays, now)...)
			}
		}(i)
	}

	for _, app := range apps {
		jobs <- app
	}
	close(jobs)
	wg.Wait()

	var merged []ExpiringCredential
	for _, results := range perWorker {
		merged = append(merged, results...)
	}
	return merged
}

func expiringCredentials(app graph.Application, thresholdDays int, now time.Time) []ExpiringCredential {
	cutoff := now.AddDate(0, 0, thresholdDays)

	var out []ExpiringCredential
	for _, cred := range app.Credentials {
		if cred.EndDate.IsZero() || cred.EndDate.After(cutoff) {
			continue
		}
		out = append(out, ExpiringCredential{
			Application:    app.DisplayName,
			AppID:          app.AppID,
			CredentialID:   cred.CredentialID,
			CredentialName: cred.DisplayName,
			Type:           cred.Type,
			EndDate:        cred.EndDate,
			DaysRemaining:  int(cred.EndDate.Sub(now).Hours() / 24),
			Expired:        cred.EndDate.Before(now),
		})
	}
	return out
}

// CredentialExpiryFormatterLink renders expiring credentials as JSON and
// Markdown.
type CredentialExpiryFormatterLink struct {
	*chain.Base
}

func NewCredentialExpiryFormatterLink(configs ...cfg.Config) chain.Link {
	l := &CredentialExpiryFormatterLink{}
	l.Base = chain.NewBase(l, configs...)
	return l
}

func (l *CredentialExpiryFormatterLink) Params() []cfg.Param {
	return []cfg.Param{
		options.OutputDir(),
	}
}

func (l *CredentialExpiryFormatterLink) Process(input any) error {
	records, ok := input.([]ExpiringCredential)
	if !ok {
		return fmt.Errorf("expected []ExpiringCredential, got %T", input)
	}

	outputDir, _ := cfg.As[string](l.Arg("output"))

	jsonPath := filepath.Join(outputDir, "credential-expiry.json")
	if err := l.Send(outputters.NewNamedOutputData(records, jsonPath)); err != nil {
		return fmt.Errorf("failed to send JSON output: %w", err)
	}

	table := types.MarkdownTable{
		TableHeading: "Expiring Application Credentials",
		Headers:      []string{"Application", "Credential", "Type", "Expires", "Days Remaining"},
	}
	for _, record := range records {
		name := record.CredentialName
		if name == "" {
			name = record.CredentialID
		}
		remaining := fmt.Sprintf("%d", record.DaysRemaining)
		if record.Expired {
			remaining = "expired"
		}
		table.AddRow(record.Application, name, record.Type, record.EndDate.Format("2006-01-02"), remaining)
	}

	if err := l.Send(table); err != nil {
		return fmt.Errorf("failed to send console table: %w", err)
	}

	mdPath := filepath.Join(outputDir, "credential-expiry.md")
	return l.Send(outputters.NewNamedOutputData(table, mdPath))
}
