package models

import (
	"encoding/json"
	"math"
	"strconv"
)

// ── Trades ──

// Trade is a single execution record as supplied by the trade query tool.
// Every field is optional on the wire; see UnmarshalJSON.
type Trade struct {
	BuyerAccount     string   `json:"buyer_account,omitempty"`
	SellerAccount    string   `json:"seller_account,omitempty"`
	AccountID        string   `json:"account_id,omitempty"`         // account flips are attributed to
	RoundTripSeconds *float64 `json:"round_trip_seconds,omitempty"` // nil when the trade has no paired leg
	FlipIndicator    bool     `json:"flip_indicator,omitempty"`
}

// UnmarshalJSON decodes a trade on a best-effort basis. Missing or
// mistyped fields are left absent instead of failing the whole payload,
// and a record that is not a JSON object decodes to the zero Trade.
func (t *Trade) UnmarshalJSON(data []byte) error {
	*t = Trade{}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}

	t.BuyerAccount = looseString(raw["buyer_account"])
	t.SellerAccount = looseString(raw["seller_account"])
	t.AccountID = looseString(raw["account_id"])

	if v, ok := raw["round_trip_seconds"].(float64); ok && v >= 0 && !math.IsInf(v, 0) {
		t.RoundTripSeconds = &v
	}
	if v, ok := raw["flip_indicator"].(bool); ok {
		t.FlipIndicator = v
	}
	return nil
}

// IsSelfMatch reports whether the same account sits on both sides.
// A trade with no buyer account can never self-match.
func (t Trade) IsSelfMatch() bool {
	return t.BuyerAccount != "" && t.BuyerAccount == t.SellerAccount
}

// TradesPayload is the envelope returned by the trade query tool.
type TradesPayload struct {
	Trades []Trade `json:"trades"`
}

// Watchlist is the set of monitored accounts. Account records are opaque;
// only their count feeds the analysis.
type Watchlist struct {
	Accounts []json.RawMessage `json:"accounts"`
}

// UnmarshalJSON tolerates a missing or non-array accounts field.
func (w *Watchlist) UnmarshalJSON(data []byte) error {
	*w = Watchlist{}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	var accounts []json.RawMessage
	if err := json.Unmarshal(raw["accounts"], &accounts); err == nil {
		w.Accounts = accounts
	}
	return nil
}

// Count returns the number of monitored accounts.
func (w Watchlist) Count() int { return len(w.Accounts) }

// ── Metrics ──

// AccountFlips is the flip tally for one account.
type AccountFlips struct {
	AccountID string `json:"account_id" validate:"required"`
	FlipCount int    `json:"flip_count" validate:"gte=1"`
}

// SurveillanceMetrics is the numeric output of trade triage.
type SurveillanceMetrics struct {
	SelfMatchPct     float64        `json:"self_match_pct"      validate:"finite,gte=0,lte=100"`
	RoundTripAvgSecs *float64       `json:"round_trip_avg_secs" validate:"omitnil,finite,gte=0"`
	TopAccounts      []AccountFlips `json:"top_accounts"        validate:"required,max=10,dive"`
}

// ── SAR Memo ──

// SarAppendix lists the data sources and analysis parameters behind a memo.
type SarAppendix struct {
	Sources    []string       `json:"sources"    validate:"required,dive,required"`
	Parameters map[string]any `json:"parameters" validate:"required"`
}

// SarMemo is a draft Suspicious Activity Report.
type SarMemo struct {
	Summary  string              `json:"summary"  validate:"required"`
	Evidence []string            `json:"evidence" validate:"min=1,dive,required"`
	Metrics  SurveillanceMetrics `json:"metrics"`
	Controls []string            `json:"controls" validate:"required,dive,required"`
	Appendix SarAppendix         `json:"appendix"`
}

// ApplyDefaults fills optional collections so they serialize as [] and {}.
func (m *SarMemo) ApplyDefaults() {
	if m.Controls == nil {
		m.Controls = []string{}
	}
	if m.Appendix.Parameters == nil {
		m.Appendix.Parameters = map[string]any{}
	}
}

// SurveillanceResult is the response of the surveillance triage operation.
type SurveillanceResult struct {
	Metrics     SurveillanceMetrics `json:"metrics"`
	SarMemoJSON SarMemo             `json:"sarMemoJson"`
	SarMemoText string              `json:"sarMemoText" validate:"required"`
	Narrative   string              `json:"narrative,omitempty"`
	Mode        Mode                `json:"mode"        validate:"oneof=mock live"`
}

// ApplyDefaults delegates to the embedded memo.
func (r *SurveillanceResult) ApplyDefaults() { r.SarMemoJSON.ApplyDefaults() }

// looseString accepts strings and numbers (account ids are sometimes
// numeric in upstream exports) and drops everything else.
func looseString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return ""
	}
}
