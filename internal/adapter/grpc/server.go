package grpc

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/simaogato/estateledger-backend/internal/usecase/deed"
	"github.com/simaogato/estateledger-backend/internal/usecase/estatetoken"
)

// Server implements the LedgerService gRPC server
type Server struct {
	DeedService  *deed.DeedService
	TokenService *estatetoken.TokenService
	// Clock supplies "now" for delisting and burning.
	Clock func() time.Time
}

var _ LedgerServiceServer = (*Server)(nil)

// NewServer creates a new gRPC server instance
func NewServer(deedService *deed.DeedService, tokenService *estatetoken.TokenService) *Server {
	return &Server{
		DeedService:  deedService,
		TokenService: tokenService,
		Clock:        time.Now,
	}
}

// InitiateAgreement handles the InitiateAgreement RPC
func (s *Server) InitiateAgreement(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	owner, err := addressField(req, "property_owner")
	if err != nil {
		return nil, err
	}
	maxSupply, err := uintField(req, "max_supply")
	if err != nil {
		return nil, err
	}
	legalDoc, err := stringField(req, "legal_doc")
	if err != nil {
		return nil, err
	}

	id, err := s.DeedService.Initiate(ctx, CallerFromContext(ctx), owner, maxSupply, legalDoc)
	if err != nil {
		return nil, mapError(err)
	}
	return newResponse(map[string]interface{}{"agreement_id": uintString(id)})
}

// EnterPropertyDetails handles the EnterPropertyDetails RPC
func (s *Server) EnterPropertyDetails(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := uintField(req, "agreement_id")
	if err != nil {
		return nil, err
	}
	doc, err := stringField(req, "property_doc")
	if err != nil {
		return nil, err
	}
	price, err := uintField(req, "property_price")
	if err != nil {
		return nil, err
	}
	retains, err := uintField(req, "owner_retains_basis_points")
	if err != nil {
		return nil, err
	}

	err = s.DeedService.EnterPropertyDetails(ctx, CallerFromContext(ctx), deed.EnterPropertyDetailsInput{
		AgreementID:             id,
		PropertyDoc:             doc,
		PropertyPrice:           price,
		OwnerRetainsBasisPoints: retains,
	})
	if err != nil {
		return nil, mapError(err)
	}
	return okResponse()
}

// SetPercentage handles the SetPercentage RPC
func (s *Server) SetPercentage(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := uintField(req, "agreement_id")
	if err != nil {
		return nil, err
	}
	mogul, err := uintField(req, "mogul_basis_points")
	if err != nil {
		return nil, err
	}
	crowdsale, err := uintField(req, "crowdsale_basis_points")
	if err != nil {
		return nil, err
	}

	if err := s.DeedService.SetPercentage(ctx, CallerFromContext(ctx), id, mogul, crowdsale); err != nil {
		return nil, mapError(err)
	}
	return okResponse()
}

func (s *Server) SignByPropertyOwner(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.agreementCall(ctx, req, s.DeedService.SignByPropertyOwner)
}

func (s *Server) SignByMogul(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.agreementCall(ctx, req, s.DeedService.SignByMogul)
}

func (s *Server) UpdatePriceByPropertyOwner(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := uintField(req, "agreement_id")
	if err != nil {
		return nil, err
	}
	price, err := uintField(req, "property_price")
	if err != nil {
		return nil, err
	}

	if err := s.DeedService.UpdatePriceByPropertyOwner(ctx, CallerFromContext(ctx), id, price); err != nil {
		return nil, mapError(err)
	}
	return okResponse()
}

func (s *Server) UpdatePropertyDocByPropertyOwner(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := uintField(req, "agreement_id")
	if err != nil {
		return nil, err
	}
	doc, err := stringField(req, "property_doc")
	if err != nil {
		return nil, err
	}

	if err := s.DeedService.UpdatePropertyDocByPropertyOwner(ctx, CallerFromContext(ctx), id, doc); err != nil {
		return nil, mapError(err)
	}
	return okResponse()
}

func (s *Server) UpdatePropertyOwnerRetainsByPropertyOwner(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := uintField(req, "agreement_id")
	if err != nil {
		return nil, err
	}
	retains, err := uintField(req, "owner_retains_basis_points")
	if err != nil {
		return nil, err
	}

	if err := s.DeedService.UpdatePropertyOwnerRetainsByPropertyOwner(ctx, CallerFromContext(ctx), id, retains); err != nil {
		return nil, mapError(err)
	}
	return okResponse()
}

func (s *Server) UpdatePropertyOwnerByMogul(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := uintField(req, "agreement_id")
	if err != nil {
		return nil, err
	}
	owner, err := addressField(req, "property_owner")
	if err != nil {
		return nil, err
	}

	if err := s.DeedService.UpdatePropertyOwnerByMogul(ctx, CallerFromContext(ctx), id, owner); err != nil {
		return nil, mapError(err)
	}
	return okResponse()
}

func (s *Server) UpdateMaxSupplyByMogul(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := uintField(req, "agreement_id")
	if err != nil {
		return nil, err
	}
	maxSupply, err := uintField(req, "max_supply")
	if err != nil {
		return nil, err
	}

	if err := s.DeedService.UpdateMaxSupplyByMogul(ctx, CallerFromContext(ctx), id, maxSupply); err != nil {
		return nil, mapError(err)
	}
	return okResponse()
}

// TransferPlatformFee handles the TransferPlatformFee RPC. The caller is the payer.
func (s *Server) TransferPlatformFee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.agreementCall(ctx, req, s.DeedService.TransferPlatformFee)
}

func (s *Server) ConfirmDeedCompletion(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.agreementCall(ctx, req, s.DeedService.ConfirmDeedCompletion)
}

func (s *Server) UploadSaleDeedByOwner(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := uintField(req, "agreement_id")
	if err != nil {
		return nil, err
	}
	saleDeed, err := stringField(req, "sale_deed")
	if err != nil {
		return nil, err
	}

	if err := s.DeedService.UploadSaleDeedByOwner(ctx, CallerFromContext(ctx), id, saleDeed); err != nil {
		return nil, mapError(err)
	}
	return okResponse()
}

// GetAgreement returns the agreement both as named fields and as the
// 17-element positional "fields" list.
func (s *Server) GetAgreement(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := uintField(req, "agreement_id")
	if err != nil {
		return nil, err
	}

	agreement, err := s.DeedService.GetAgreement(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	return newResponse(agreementStruct(agreement))
}

func (s *Server) SetFundsAsset(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	asset, err := addressField(req, "funds_asset")
	if err != nil {
		return nil, err
	}
	if err := s.DeedService.SetFundsAsset(ctx, CallerFromContext(ctx), asset); err != nil {
		return nil, mapError(err)
	}
	return okResponse()
}

func (s *Server) SetPlatformFee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fee, err := decimalField(req, "platform_fee")
	if err != nil {
		return nil, err
	}
	if err := s.DeedService.SetPlatformFee(ctx, CallerFromContext(ctx), fee); err != nil {
		return nil, mapError(err)
	}
	return okResponse()
}

func (s *Server) SetPayoutAddress(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	payout, err := addressField(req, "payout_address")
	if err != nil {
		return nil, err
	}
	if err := s.DeedService.SetPayoutAddress(ctx, CallerFromContext(ctx), payout); err != nil {
		return nil, mapError(err)
	}
	return okResponse()
}

func (s *Server) GetDeedSettings(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	settings, err := s.DeedService.Settings(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return newResponse(map[string]interface{}{
		"funds_asset":    settings.FundsAsset.Hex(),
		"platform_fee":   settings.PlatformFee.String(),
		"payout_address": settings.PayoutAddress.Hex(),
	})
}

// MintNewPropertyToken handles the MintNewPropertyToken RPC
func (s *Server) MintNewPropertyToken(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := uintField(req, "token_id")
	if err != nil {
		return nil, err
	}
	vesting, err := uintField(req, "vesting_amount")
	if err != nil {
		return nil, err
	}
	crowdsale, err := uintField(req, "crowdsale_amount")
	if err != nil {
		return nil, err
	}
	uri, err := stringField(req, "uri")
	if err != nil {
		return nil, err
	}

	err = s.TokenService.MintNewPropertyToken(ctx, CallerFromContext(ctx), estatetoken.MintInput{
		TokenID:         id,
		VestingAmount:   vesting,
		CrowdsaleAmount: crowdsale,
		URI:             uri,
	})
	if err != nil {
		return nil, mapError(err)
	}
	return okResponse()
}

func (s *Server) UpdateVestingContractAddress(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	pool, err := addressField(req, "vesting_pool")
	if err != nil {
		return nil, err
	}
	if err := s.TokenService.UpdateVestingContractAddress(ctx, CallerFromContext(ctx), pool); err != nil {
		return nil, mapError(err)
	}
	return okResponse()
}

func (s *Server) UpdateCrowdsaleAddress(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	pool, err := addressField(req, "crowdsale_pool")
	if err != nil {
		return nil, err
	}
	if err := s.TokenService.UpdateCrowdsaleAddress(ctx, CallerFromContext(ctx), pool); err != nil {
		return nil, mapError(err)
	}
	return okResponse()
}

// DelistToken handles the DelistToken RPC. burn_deadline is unix seconds.
func (s *Server) DelistToken(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := uintField(req, "token_id")
	if err != nil {
		return nil, err
	}
	deadline, err := unixField(req, "burn_deadline")
	if err != nil {
		return nil, err
	}
	penalty, err := uintField(req, "penalty_percent_per_week")
	if err != nil {
		return nil, err
	}

	if err := s.TokenService.DelistToken(ctx, CallerFromContext(ctx), id, deadline, penalty, s.Clock()); err != nil {
		return nil, mapError(err)
	}
	return okResponse()
}

func (s *Server) ExtendBurnDeadline(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := uintField(req, "token_id")
	if err != nil {
		return nil, err
	}
	deadline, err := unixField(req, "burn_deadline")
	if err != nil {
		return nil, err
	}

	if err := s.TokenService.ExtendBurnDeadline(ctx, CallerFromContext(ctx), id, deadline); err != nil {
		return nil, mapError(err)
	}
	return okResponse()
}

func (s *Server) Transfer(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	from, err := addressField(req, "from")
	if err != nil {
		return nil, err
	}
	to, err := addressField(req, "to")
	if err != nil {
		return nil, err
	}
	id, err := uintField(req, "token_id")
	if err != nil {
		return nil, err
	}
	amount, err := uintField(req, "amount")
	if err != nil {
		return nil, err
	}

	if err := s.TokenService.Transfer(ctx, CallerFromContext(ctx), from, to, id, amount); err != nil {
		return nil, mapError(err)
	}
	return okResponse()
}

func (s *Server) Burn(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	holder, err := addressField(req, "holder")
	if err != nil {
		return nil, err
	}
	id, err := uintField(req, "token_id")
	if err != nil {
		return nil, err
	}
	amount, err := uintField(req, "amount")
	if err != nil {
		return nil, err
	}

	if err := s.TokenService.Burn(ctx, CallerFromContext(ctx), holder, id, amount, s.Clock()); err != nil {
		return nil, mapError(err)
	}
	return okResponse()
}

func (s *Server) BurnBatch(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	holder, err := addressField(req, "holder")
	if err != nil {
		return nil, err
	}
	ids, err := uintListField(req, "token_ids")
	if err != nil {
		return nil, err
	}
	amounts, err := uintListField(req, "amounts")
	if err != nil {
		return nil, err
	}

	if err := s.TokenService.BurnBatch(ctx, CallerFromContext(ctx), holder, ids, amounts, s.Clock()); err != nil {
		return nil, mapError(err)
	}
	return okResponse()
}

func (s *Server) SetApprovalForAll(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	operator, err := addressField(req, "operator")
	if err != nil {
		return nil, err
	}
	approved, err := boolField(req, "approved")
	if err != nil {
		return nil, err
	}

	if err := s.TokenService.SetApprovalForAll(ctx, CallerFromContext(ctx), operator, approved); err != nil {
		return nil, mapError(err)
	}
	return okResponse()
}

func (s *Server) IsApprovedForAll(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	holder, err := addressField(req, "holder")
	if err != nil {
		return nil, err
	}
	operator, err := addressField(req, "operator")
	if err != nil {
		return nil, err
	}

	approved, err := s.TokenService.IsApprovedForAll(ctx, holder, operator)
	if err != nil {
		return nil, mapError(err)
	}
	return newResponse(map[string]interface{}{"approved": approved})
}

// PenaltyPercentage handles the penalty calculator RPC. at is unix seconds.
func (s *Server) PenaltyPercentage(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	rate, err := uintField(req, "penalty_percent_per_week")
	if err != nil {
		return nil, err
	}
	id, err := uintField(req, "token_id")
	if err != nil {
		return nil, err
	}
	at, err := unixField(req, "at")
	if err != nil {
		return nil, err
	}

	penalty, err := s.TokenService.PenaltyPercentageCalculator(ctx, rate, id, at)
	if err != nil {
		return nil, mapError(err)
	}
	return newResponse(map[string]interface{}{"penalty": uintString(penalty)})
}

func (s *Server) Pause(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := s.TokenService.Pause(ctx, CallerFromContext(ctx)); err != nil {
		return nil, mapError(err)
	}
	return okResponse()
}

func (s *Server) Unpause(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := s.TokenService.Unpause(ctx, CallerFromContext(ctx)); err != nil {
		return nil, mapError(err)
	}
	return okResponse()
}

// TokenInfo returns the token both as named fields and as the 5-element
// positional "info" list.
func (s *Server) TokenInfo(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := uintField(req, "token_id")
	if err != nil {
		return nil, err
	}

	token, err := s.TokenService.TokenInfo(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	return newResponse(tokenStruct(token))
}

func (s *Server) BalanceOf(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	holder, err := addressField(req, "holder")
	if err != nil {
		return nil, err
	}
	id, err := uintField(req, "token_id")
	if err != nil {
		return nil, err
	}

	balance, err := s.TokenService.BalanceOf(ctx, holder, id)
	if err != nil {
		return nil, mapError(err)
	}
	return newResponse(map[string]interface{}{"balance": uintString(balance)})
}

func (s *Server) TotalSupply(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := uintField(req, "token_id")
	if err != nil {
		return nil, err
	}

	supply, err := s.TokenService.TotalSupply(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	return newResponse(map[string]interface{}{"total_supply": uintString(supply)})
}

func (s *Server) GetTokenSettings(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	settings, err := s.TokenService.Settings(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return newResponse(map[string]interface{}{
		"vesting_pool":   settings.VestingPool.Hex(),
		"crowdsale_pool": settings.CrowdsalePool.Hex(),
		"paused":         settings.Paused,
	})
}

// agreementCall runs a deed operation that only takes the agreement ID.
func (s *Server) agreementCall(ctx context.Context, req *structpb.Struct, op func(context.Context, common.Address, uint64) error) (*structpb.Struct, error) {
	id, err := uintField(req, "agreement_id")
	if err != nil {
		return nil, err
	}
	if err := op(ctx, CallerFromContext(ctx), id); err != nil {
		return nil, mapError(err)
	}
	return okResponse()
}
