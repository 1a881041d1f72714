package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"insights/internal/core"
	"insights/internal/personalization"
)

const maxBodyBytes = 1 << 16

// amountInput accepts a JSON number or a string in any format ParseAmount
// understands ("1.234,56", "R$ 50"). Parsing is deferred so the failing
// field can be reported.
type amountInput string

func (a *amountInput) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*a = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = amountInput(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("amount must be a number or string")
	}
	// JSON numbers may use exponent form, which ParseAmount does not read.
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return fmt.Errorf("amount must be a number or string")
	}
	*a = amountInput(d.String())
	return nil
}

// parse returns zero for an absent amount; the domain rules decide whether
// zero is acceptable.
func (a amountInput) parse(field string) (decimal.Decimal, error) {
	if strings.TrimSpace(string(a)) == "" {
		return decimal.Zero, nil
	}
	d, err := core.ParseAmount(string(a))
	if err != nil {
		return decimal.Zero, &core.ValidationError{Field: field, Err: core.ErrInvalidAmount}
	}
	return d, nil
}

type goalRequest struct {
	Name          string      `json:"name"`
	TargetAmount  amountInput `json:"targetAmount"`
	CurrentAmount amountInput `json:"currentAmount"`
}

func (g goalRequest) draft() (personalization.GoalDraft, error) {
	target, err := g.TargetAmount.parse("targetAmount")
	if err != nil {
		return personalization.GoalDraft{}, err
	}
	current, err := g.CurrentAmount.parse("currentAmount")
	if err != nil {
		return personalization.GoalDraft{}, err
	}
	return personalization.GoalDraft{
		Name:          sanitizeInput(g.Name),
		TargetAmount:  target,
		CurrentAmount: current,
	}, nil
}

type alertRequest struct {
	Category    string      `json:"category"`
	LimitAmount amountInput `json:"limitAmount"`
}

func (a alertRequest) draft() (personalization.AlertDraft, error) {
	limit, err := a.LimitAmount.parse("limitAmount")
	if err != nil {
		return personalization.AlertDraft{}, err
	}
	return personalization.AlertDraft{
		Category:    sanitizeInput(a.Category),
		LimitAmount: limit,
	}, nil
}

type toggleRequest struct {
	Enabled *bool `json:"enabled"`
}

// decodeJSON reads one JSON object into v, rejecting unknown fields,
// trailing data and bodies over maxBodyBytes.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return &badRequestError{msg: "request body is empty"}
		case errors.As(err, &maxErr):
			return &badRequestError{msg: "request body too large"}
		default:
			return &badRequestError{msg: "invalid JSON body: " + err.Error()}
		}
	}
	if dec.More() {
		return &badRequestError{msg: "request body must contain a single JSON object"}
	}
	return nil
}

// parseWindow reads the window query parameter; absent selects the default.
func parseWindow(r *http.Request) (core.TimeWindow, error) {
	w, err := core.ParseTimeWindow(r.URL.Query().Get("window"))
	if err != nil {
		return "", &badRequestError{field: "window", msg: err.Error()}
	}
	return w, nil
}
