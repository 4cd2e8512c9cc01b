package models

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

// ── Trade Tests ──

func TestTradeLooseDecoding(t *testing.T) {
	var p TradesPayload
	raw := `{"trades":[
		{"buyer_account":"A","seller_account":"A","round_trip_seconds":12.5,"flip_indicator":true,"account_id":"A"},
		{"buyer_account":42,"seller_account":"B","round_trip_seconds":"fast"},
		{"round_trip_seconds":-3},
		"garbage"
	]}`
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("json.Unmarshal(TradesPayload) error: %v", err)
	}
	if len(p.Trades) != 4 {
		t.Fatalf("len(Trades): got %d, want 4", len(p.Trades))
	}

	first := p.Trades[0]
	if !first.IsSelfMatch() || !first.FlipIndicator || first.RoundTripSeconds == nil || *first.RoundTripSeconds != 12.5 {
		t.Errorf("first trade decoded wrong: %+v", first)
	}
	if p.Trades[1].BuyerAccount != "42" {
		t.Errorf("numeric buyer account: got %q, want %q", p.Trades[1].BuyerAccount, "42")
	}
	if p.Trades[1].RoundTripSeconds != nil {
		t.Error("string round trip should be absent")
	}
	if p.Trades[2].RoundTripSeconds != nil {
		t.Error("negative round trip should be absent")
	}
	if p.Trades[3] != (Trade{}) {
		t.Errorf("non-object trade: got %+v, want zero value", p.Trades[3])
	}
}

func TestIsSelfMatchNeedsBuyer(t *testing.T) {
	if (Trade{}).IsSelfMatch() {
		t.Error("empty accounts must not self-match")
	}
	if (Trade{BuyerAccount: "A", SellerAccount: "B"}).IsSelfMatch() {
		t.Error("different accounts must not self-match")
	}
}

func TestWatchlistCount(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{`{"accounts":[{"id":1},{"id":2}]}`, 2},
		{`{"accounts":"none"}`, 0},
		{`{}`, 0},
		{`[1,2,3]`, 0},
	}
	for _, tt := range tests {
		var w Watchlist
		if err := json.Unmarshal([]byte(tt.raw), &w); err != nil {
			t.Fatalf("json.Unmarshal(%s) error: %v", tt.raw, err)
		}
		if got := w.Count(); got != tt.want {
			t.Errorf("Count(%s): got %d, want %d", tt.raw, got, tt.want)
		}
	}
}

// ── Memo Defaults ──

func TestSarMemoDefaultsSerializeEmpty(t *testing.T) {
	m := SarMemo{Summary: "s", Evidence: []string{"e"}}
	m.ApplyDefaults()
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("json.Marshal(SarMemo) error: %v", err)
	}
	if !strings.Contains(string(data), `"controls":[]`) {
		t.Errorf("controls should serialize as []: %s", data)
	}
	if !strings.Contains(string(data), `"parameters":{}`) {
		t.Errorf("parameters should serialize as {}: %s", data)
	}
}

// ── Client Profile ──

func TestClientProfileGet(t *testing.T) {
	var p ClientProfile
	if err := json.Unmarshal([]byte(`{"client_name":"  Northwind ","aum":250000000,"esg":true,"tags":["a"]}`), &p); err != nil {
		t.Fatalf("json.Unmarshal(ClientProfile) error: %v", err)
	}
	if got := p.Get("client_name"); got != "Northwind" {
		t.Errorf("client_name: got %q", got)
	}
	if got := p.Get("aum"); got != "250000000" {
		t.Errorf("aum: got %q", got)
	}
	if got := p.Get("esg"); got != "true" {
		t.Errorf("esg: got %q", got)
	}
	if got := p.Get("tags"); got != "" {
		t.Errorf("tags: got %q, want empty", got)
	}
	if got := p.GetOr("meeting_type", "Standard"); got != "Standard" {
		t.Errorf("GetOr default: got %q", got)
	}
}

// ── Capital Figures ──

func TestCapitalSerializesAsNumbers(t *testing.T) {
	pos := CapitalPosition{Tier1Capital: decimal.NewFromInt(2_500_000_000), CapitalRatio: decimal.RequireFromString("12.8")}
	data, err := json.Marshal(pos)
	if err != nil {
		t.Fatalf("json.Marshal(CapitalPosition) error: %v", err)
	}
	if !strings.Contains(string(data), `"tier1_capital":2500000000`) {
		t.Errorf("tier1 should be a JSON number: %s", data)
	}
	if !strings.Contains(string(data), `"capital_ratio":12.8`) {
		t.Errorf("capital ratio should be a JSON number: %s", data)
	}
}

func TestNoticeMappingText(t *testing.T) {
	if got := (RegNotice{Title: "EMIR update"}).MappingText(); got != "EMIR update" {
		t.Errorf("title only: got %q", got)
	}
	if got := (RegNotice{Title: "T", Text: "body"}).MappingText(); got != "T\n\nbody" {
		t.Errorf("title and text: got %q", got)
	}
}
