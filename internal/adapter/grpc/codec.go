package grpc

import (
	"math"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/simaogato/estateledger-backend/internal/domain"
)

// Largest integer a JSON/protobuf double carries exactly.
const maxExactFloat = 1 << 53

// Unsigned quantities are accepted as decimal strings or as exact numbers,
// and always returned as decimal strings.

func field(req *structpb.Struct, name string) (*structpb.Value, error) {
	if req == nil {
		return nil, status.Errorf(codes.InvalidArgument, "missing field %s", name)
	}
	v, ok := req.GetFields()[name]
	if !ok {
		return nil, status.Errorf(codes.InvalidArgument, "missing field %s", name)
	}
	return v, nil
}

func uintValue(name string, v *structpb.Value) (uint64, error) {
	switch kind := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		n, err := strconv.ParseUint(kind.StringValue, 10, 64)
		if err != nil {
			return 0, status.Errorf(codes.InvalidArgument, "invalid %s: %v", name, err)
		}
		return n, nil
	case *structpb.Value_NumberValue:
		f := kind.NumberValue
		if f < 0 || f > maxExactFloat || f != math.Trunc(f) {
			return 0, status.Errorf(codes.InvalidArgument, "invalid %s: %v is not an exact unsigned integer", name, f)
		}
		return uint64(f), nil
	default:
		return 0, status.Errorf(codes.InvalidArgument, "invalid %s: expected string or number", name)
	}
}

func uintField(req *structpb.Struct, name string) (uint64, error) {
	v, err := field(req, name)
	if err != nil {
		return 0, err
	}
	return uintValue(name, v)
}

func uintListField(req *structpb.Struct, name string) ([]uint64, error) {
	v, err := field(req, name)
	if err != nil {
		return nil, err
	}
	list := v.GetListValue()
	if list == nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid %s: expected list", name)
	}

	out := make([]uint64, 0, len(list.GetValues()))
	for i, item := range list.GetValues() {
		n, err := uintValue(name+"["+strconv.Itoa(i)+"]", item)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// stringField requires the field to be present; an empty string is allowed.
func stringField(req *structpb.Struct, name string) (string, error) {
	v, err := field(req, name)
	if err != nil {
		return "", err
	}
	s, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", status.Errorf(codes.InvalidArgument, "invalid %s: expected string", name)
	}
	return s.StringValue, nil
}

func boolField(req *structpb.Struct, name string) (bool, error) {
	v, err := field(req, name)
	if err != nil {
		return false, err
	}
	b, ok := v.GetKind().(*structpb.Value_BoolValue)
	if !ok {
		return false, status.Errorf(codes.InvalidArgument, "invalid %s: expected bool", name)
	}
	return b.BoolValue, nil
}

func addressField(req *structpb.Struct, name string) (common.Address, error) {
	s, err := stringField(req, name)
	if err != nil {
		return common.Address{}, err
	}
	if !common.IsHexAddress(s) {
		return common.Address{}, status.Errorf(codes.InvalidArgument, "invalid %s: %q is not an address", name, s)
	}
	return common.HexToAddress(s), nil
}

func decimalField(req *structpb.Struct, name string) (decimal.Decimal, error) {
	s, err := stringField(req, name)
	if err != nil {
		return decimal.Zero, err
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, status.Errorf(codes.InvalidArgument, "invalid %s: %v", name, err)
	}
	return d, nil
}

// unixField reads a timestamp given as unix seconds.
func unixField(req *structpb.Struct, name string) (time.Time, error) {
	secs, err := uintField(req, name)
	if err != nil {
		return time.Time{}, err
	}
	if secs > math.MaxInt64 {
		return time.Time{}, status.Errorf(codes.InvalidArgument, "invalid %s: out of range", name)
	}
	return time.Unix(int64(secs), 0).UTC(), nil
}

func uintString(v uint64) string {
	return strconv.FormatUint(v, 10)
}

func unixString(t time.Time) string {
	if t.IsZero() || t.Unix() < 0 {
		return "0"
	}
	return strconv.FormatInt(t.Unix(), 10)
}

func timestampValue(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

// positional converts a domain projection into JSON-safe list values.
func positional(values []any) []interface{} {
	out := make([]interface{}, 0, len(values))
	for _, v := range values {
		switch typed := v.(type) {
		case uint64:
			out = append(out, uintString(typed))
		case common.Address:
			out = append(out, typed.Hex())
		default:
			out = append(out, typed)
		}
	}
	return out
}

func agreementStruct(a *domain.Agreement) map[string]interface{} {
	return map[string]interface{}{
		"agreement_id":                 uintString(a.ID),
		"fields":                       positional(a.Projection()),
		"sale_deed_text":               a.SaleDeedText,
		"legal_doc_text":               a.LegalDocText,
		"property_doc_text":            a.PropertyDocText,
		"property_price":               uintString(a.PropertyPrice),
		"mogul_share_basis_points":     uintString(a.MogulShareBasisPoints),
		"mogul_share_units":            uintString(a.MogulShareUnits),
		"crowdsale_share_basis_points": uintString(a.CrowdsaleShareBasisPoints),
		"crowdsale_share_units":        uintString(a.CrowdsaleShareUnits),
		"owner_retains_basis_points":   uintString(a.OwnerRetainsBasisPoints),
		"owner_retains_units":          uintString(a.OwnerRetainsUnits),
		"max_supply":                   uintString(a.MaxSupply),
		"property_owner":               a.PropertyOwner.Hex(),
		"signed_by_owner":              a.SignedByOwner,
		"signed_by_mogul":              a.SignedByMogul,
		"is_initiated":                 a.IsInitiated,
		"fee_paid":                     a.FeePaid,
		"is_completed":                 a.IsCompleted,
	}
}

func tokenStruct(t *domain.EstateToken) map[string]interface{} {
	return map[string]interface{}{
		"token_id":                 uintString(t.ID),
		"info":                     positional(t.Info()),
		"uri":                      t.URI,
		"is_listed":                t.IsListed,
		"is_actively_listed":       t.IsActivelyListed,
		"burn_deadline":            unixString(t.BurnDeadline),
		"delisted_at":              timestampValue(t.DelistedAt),
		"penalty_percent_per_week": uintString(t.PenaltyPercentPerWeek),
		"total_supply":             uintString(t.TotalSupply),
	}
}

func newResponse(fields map[string]interface{}) (*structpb.Struct, error) {
	resp, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}
	return resp, nil
}

func okResponse() (*structpb.Struct, error) {
	return newResponse(map[string]interface{}{"ok": true})
}
