package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"insights/internal/core"
	"insights/internal/store"
)

// Ensure interface conformance
var (
	_ store.GoalStore         = (*Client)(nil)
	_ store.AlertStore        = (*Client)(nil)
	_ store.TransactionSource = (*Client)(nil)
)

// Config names the spreadsheet, its tabs and the service account credentials.
// Only one of CredentialsJSON and CredentialsFile is needed; when both are
// empty GOOGLE_APPLICATION_CREDENTIALS is tried.
type Config struct {
	SpreadsheetID     string
	TransactionsSheet string
	GoalsSheet        string
	AlertsSheet       string
	CredentialsJSON   string
	CredentialsFile   string
}

type Client struct {
	svc               *gsheet.Service
	spreadsheetID     string
	transactionsSheet string
	goalsSheet        string
	alertsSheet       string
}

// New creates a Sheets client. Empty sheet names default to "Transactions",
// "Goals" and "Alerts".
func New(ctx context.Context, cfg Config) (*Client, error) {
	spreadsheetID := strings.TrimSpace(cfg.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}

	svc, err := newSheetsService(ctx, cfg.CredentialsJSON, cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:               svc,
		spreadsheetID:     spreadsheetID,
		transactionsSheet: orDefault(cfg.TransactionsSheet, "Transactions"),
		goalsSheet:        orDefault(cfg.GoalsSheet, "Goals"),
		alertsSheet:       orDefault(cfg.AlertsSheet, "Alerts"),
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context, credentialsJSON, credentialsFile string) (*gsheet.Service, error) {
	credentialsJSON = strings.TrimSpace(credentialsJSON)
	credentialsFile = strings.TrimSpace(credentialsFile)
	if credentialsJSON == "" && credentialsFile == "" {
		credentialsFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var creds []byte
	switch {
	case credentialsJSON != "":
		slog.InfoContext(ctx, "Using inline JSON credentials")
		creds = []byte(credentialsJSON)
	case credentialsFile != "":
		slog.InfoContext(ctx, "Reading credentials from file", "path", credentialsFile)
		b, err := os.ReadFile(credentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		creds = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func (c *Client) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	values, err := c.read(ctx, c.transactionsSheet, "A:G")
	if err != nil {
		return nil, err
	}
	txs, skipped, err := parseTransactions(values)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", c.transactionsSheet, err)
	}
	if skipped > 0 {
		slog.WarnContext(ctx, "Skipped unreadable transaction rows", "sheet", c.transactionsSheet, "skipped", skipped)
	}
	return txs, nil
}

func (c *Client) LoadGoals(ctx context.Context) ([]core.SavingsGoal, error) {
	values, err := c.read(ctx, c.goalsSheet, "A:D")
	if err != nil {
		return nil, err
	}
	return parseGoals(values)
}

func (c *Client) SaveGoals(ctx context.Context, goals []core.SavingsGoal) error {
	return c.replace(ctx, c.goalsSheet, "A:D", encodeGoals(goals))
}

func (c *Client) LoadAlerts(ctx context.Context) ([]core.SpendingAlert, error) {
	values, err := c.read(ctx, c.alertsSheet, "A:D")
	if err != nil {
		return nil, err
	}
	return parseAlerts(values)
}

func (c *Client) SaveAlerts(ctx context.Context, alerts []core.SpendingAlert) error {
	return c.replace(ctx, c.alertsSheet, "A:D", encodeAlerts(alerts))
}

func (c *Client) read(ctx context.Context, sheet, cols string) ([][]interface{}, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!%s", sheet, cols)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return resp.Values, nil
}

// replace clears the columns of a tab and writes rows from A1. Values are
// written RAW so that amounts and ids read back exactly as stored.
func (c *Client) replace(ctx context.Context, sheet, cols string, rows [][]interface{}) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!%s", sheet, cols)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", rng, err)
	}

	target := fmt.Sprintf("%s!A1", sheet)
	vr := &gsheet.ValueRange{Values: rows}
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, target, vr).
		ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}

	slog.InfoContext(ctx, "Sheet replaced", "sheet", sheet, "rows", len(rows)-1)
	return nil
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}
