package httpapi

import (
	"strconv"
	"time"

	"github.com/simaogato/estateledger-backend/internal/domain"
)

type errorResponse struct {
	Error    string `json:"error"`
	Category string `json:"category,omitempty"`
}

// agreementResponse mirrors the positional projection in Fields.
type agreementResponse struct {
	AgreementID               string        `json:"agreement_id"`
	Fields                    []interface{} `json:"fields"`
	SaleDeedText              string        `json:"sale_deed_text"`
	LegalDocText              string        `json:"legal_doc_text"`
	PropertyDocText           string        `json:"property_doc_text"`
	PropertyPrice             string        `json:"property_price"`
	MogulShareBasisPoints     string        `json:"mogul_share_basis_points"`
	MogulShareUnits           string        `json:"mogul_share_units"`
	CrowdsaleShareBasisPoints string        `json:"crowdsale_share_basis_points"`
	CrowdsaleShareUnits       string        `json:"crowdsale_share_units"`
	OwnerRetainsBasisPoints   string        `json:"owner_retains_basis_points"`
	OwnerRetainsUnits         string        `json:"owner_retains_units"`
	MaxSupply                 string        `json:"max_supply"`
	PropertyOwner             string        `json:"property_owner"`
	SignedByOwner             bool          `json:"signed_by_owner"`
	SignedByMogul             bool          `json:"signed_by_mogul"`
	IsInitiated               bool          `json:"is_initiated"`
	FeePaid                   bool          `json:"fee_paid"`
	IsCompleted               bool          `json:"is_completed"`
}

type tokenResponse struct {
	TokenID               string        `json:"token_id"`
	Info                  []interface{} `json:"info"`
	URI                   string        `json:"uri"`
	IsListed              bool          `json:"is_listed"`
	IsActivelyListed      bool          `json:"is_actively_listed"`
	BurnDeadline          int64         `json:"burn_deadline"`
	DelistedAt            *time.Time    `json:"delisted_at"`
	PenaltyPercentPerWeek string        `json:"penalty_percent_per_week"`
	TotalSupply           string        `json:"total_supply"`
}

type balanceResponse struct {
	TokenID string `json:"token_id"`
	Holder  string `json:"holder"`
	Balance string `json:"balance"`
}

type penaltyResponse struct {
	TokenID string `json:"token_id"`
	At      int64  `json:"at"`
	Penalty string `json:"penalty"`
}

func u(v uint64) string {
	return strconv.FormatUint(v, 10)
}

func newAgreementResponse(a *domain.Agreement) agreementResponse {
	fields := a.Projection()
	for i, v := range fields {
		switch typed := v.(type) {
		case uint64:
			fields[i] = u(typed)
		case interface{ Hex() string }:
			fields[i] = typed.Hex()
		}
	}

	return agreementResponse{
		AgreementID:               u(a.ID),
		Fields:                    fields,
		SaleDeedText:              a.SaleDeedText,
		LegalDocText:              a.LegalDocText,
		PropertyDocText:           a.PropertyDocText,
		PropertyPrice:             u(a.PropertyPrice),
		MogulShareBasisPoints:     u(a.MogulShareBasisPoints),
		MogulShareUnits:           u(a.MogulShareUnits),
		CrowdsaleShareBasisPoints: u(a.CrowdsaleShareBasisPoints),
		CrowdsaleShareUnits:       u(a.CrowdsaleShareUnits),
		OwnerRetainsBasisPoints:   u(a.OwnerRetainsBasisPoints),
		OwnerRetainsUnits:         u(a.OwnerRetainsUnits),
		MaxSupply:                 u(a.MaxSupply),
		PropertyOwner:             a.PropertyOwner.Hex(),
		SignedByOwner:             a.SignedByOwner,
		SignedByMogul:             a.SignedByMogul,
		IsInitiated:               a.IsInitiated,
		FeePaid:                   a.FeePaid,
		IsCompleted:               a.IsCompleted,
	}
}

func newTokenResponse(t *domain.EstateToken) tokenResponse {
	info := t.Info()
	for i, v := range info {
		if n, ok := v.(uint64); ok {
			info[i] = u(n)
		}
	}

	resp := tokenResponse{
		TokenID:               u(t.ID),
		Info:                  info,
		URI:                   t.URI,
		IsListed:              t.IsListed,
		IsActivelyListed:      t.IsActivelyListed,
		PenaltyPercentPerWeek: u(t.PenaltyPercentPerWeek),
		TotalSupply:           u(t.TotalSupply),
	}
	if !t.BurnDeadline.IsZero() {
		resp.BurnDeadline = t.BurnDeadline.Unix()
	}
	if !t.DelistedAt.IsZero() {
		delisted := t.DelistedAt.UTC()
		resp.DelistedAt = &delisted
	}
	return resp
}
