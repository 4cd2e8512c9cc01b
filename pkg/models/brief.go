package models

import (
	"strconv"
	"strings"
)

// Mode tags whether the text-generation backend took part in a result.
type Mode string

const (
	ModeMock Mode = "mock"
	ModeLive Mode = "live"
)

// ClientProfile is the free-form CRM record behind a client brief.
// Keys follow the CRM export (client_name, aum, market_view, ...).
type ClientProfile map[string]any

// Get returns the field as text, or "" when it is absent or empty.
func (p ClientProfile) Get(key string) string {
	switch v := p[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// GetOr returns the field or def when it is absent.
func (p ClientProfile) GetOr(key, def string) string {
	if v := p.Get(key); v != "" {
		return v
	}
	return def
}

// ClientBrief is the response of the client brief operation.
type ClientBrief struct {
	Brief         string   `json:"brief"         validate:"required"`
	TalkingPoints []string `json:"talkingPoints" validate:"required,dive,required"`
	CrossSell     []string `json:"crossSell"     validate:"required,dive,required"`
	Narrative     string   `json:"narrative,omitempty"`
	Mode          Mode     `json:"mode"          validate:"oneof=mock live"`
}
