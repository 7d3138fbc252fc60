package domain

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

// EventType names a committed ledger mutation.
type EventType string

const (
	EventAgreementInitiated     EventType = "AGREEMENT_INITIATED"
	EventPropertyDetailsEntered EventType = "PROPERTY_DETAILS_ENTERED"
	EventPercentagesSet         EventType = "PERCENTAGES_SET"
	EventSignedByOwner          EventType = "SIGNED_BY_OWNER"
	EventSignedByMogul          EventType = "SIGNED_BY_MOGUL"
	EventAgreementUpdated       EventType = "AGREEMENT_UPDATED"
	EventPlatformFeePaid        EventType = "PLATFORM_FEE_PAID"
	EventDeedCompleted          EventType = "DEED_COMPLETED"
	EventSaleDeedUploaded       EventType = "SALE_DEED_UPLOADED"
	EventDeedSettingsChanged    EventType = "DEED_SETTINGS_CHANGED"
	EventTokensMinted           EventType = "TOKENS_MINTED"
	EventTokenDelisted          EventType = "TOKEN_DELISTED"
	EventBurnDeadlineExtended   EventType = "BURN_DEADLINE_EXTENDED"
	EventTokensTransferred      EventType = "TOKENS_TRANSFERRED"
	EventTokensBurned           EventType = "TOKENS_BURNED"
	EventApprovalForAll         EventType = "APPROVAL_FOR_ALL"
	EventTokenSettingsChanged   EventType = "TOKEN_SETTINGS_CHANGED"
	EventPaused                 EventType = "PAUSED"
	EventUnpaused               EventType = "UNPAUSED"
	EventBurnWindowExpired      EventType = "BURN_WINDOW_EXPIRED"
)

// Event describes a mutation after it has been committed.
type Event struct {
	ID         uuid.UUID
	Type       EventType
	Actor      common.Address
	EntityID   uint64
	Attributes map[string]string
	OccurredAt time.Time
}

// NewEvent creates an event with a fresh ID.
func NewEvent(eventType EventType, actor common.Address, entityID uint64, occurredAt time.Time, attrs map[string]string) Event {
	if attrs == nil {
		attrs = map[string]string{}
	}
	return Event{
		ID:         uuid.New(),
		Type:       eventType,
		Actor:      actor,
		EntityID:   entityID,
		Attributes: attrs,
		OccurredAt: occurredAt,
	}
}
