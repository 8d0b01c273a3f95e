package domain

import (
	"github.com/google/uuid"

	dErrors "terralegit/pkg/domain-errors"
)

// ID is a UUID tagged with the entity kind it identifies. The tag parameter
// keeps IDs of different entities from being assigned to each other.
type ID[T any] uuid.UUID

// Tag types. They carry no data.
type (
	userTag       struct{}
	sellerTag     struct{}
	buyerTag      struct{}
	speciesTag    struct{}
	listingTag    struct{}
	caseTag       struct{}
	documentTag   struct{}
	shipmentTag   struct{}
	checkpointTag struct{}
	inquiryTag    struct{}
	auditLogTag   struct{}
)

type (
	UserID       = ID[userTag]
	SellerID     = ID[sellerTag]
	BuyerID      = ID[buyerTag]
	SpeciesID    = ID[speciesTag]
	ListingID    = ID[listingTag]
	CaseID       = ID[caseTag]
	DocumentID   = ID[documentTag]
	ShipmentID   = ID[shipmentTag]
	CheckpointID = ID[checkpointTag]
	InquiryID    = ID[inquiryTag]
	AuditLogID   = ID[auditLogTag]
)

// NewID returns a fresh random ID.
func NewID[T any]() ID[T] {
	return ID[T](uuid.New())
}

func (i ID[T]) String() string {
	return uuid.UUID(i).String()
}

// IsNil reports whether the ID is the zero UUID.
func (i ID[T]) IsNil() bool {
	return uuid.UUID(i) == uuid.Nil
}

// UUID returns the untyped value for storage adapters.
func (i ID[T]) UUID() uuid.UUID {
	return uuid.UUID(i)
}

func (i ID[T]) MarshalText() ([]byte, error) {
	return uuid.UUID(i).MarshalText()
}

func (i *ID[T]) UnmarshalText(b []byte) error {
	parsed, err := parseID[T](string(b))
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}

func parseID[T any](s string) (ID[T], error) {
	if s == "" {
		return ID[T]{}, dErrors.New(dErrors.CodeInvalidInput, "id cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return ID[T]{}, dErrors.New(dErrors.CodeInvalidInput, "id must be a valid uuid")
	}
	if u == uuid.Nil {
		return ID[T]{}, dErrors.New(dErrors.CodeInvalidInput, "id cannot be nil")
	}
	return ID[T](u), nil
}

// Parse functions are the trust boundary for IDs coming from requests.
// They reject empty, malformed and nil UUIDs with CodeInvalidInput.

func ParseUserID(s string) (UserID, error)         { return parseID[userTag](s) }
func ParseSellerID(s string) (SellerID, error)     { return parseID[sellerTag](s) }
func ParseBuyerID(s string) (BuyerID, error)       { return parseID[buyerTag](s) }
func ParseSpeciesID(s string) (SpeciesID, error)   { return parseID[speciesTag](s) }
func ParseListingID(s string) (ListingID, error)   { return parseID[listingTag](s) }
func ParseCaseID(s string) (CaseID, error)         { return parseID[caseTag](s) }
func ParseDocumentID(s string) (DocumentID, error) { return parseID[documentTag](s) }
func ParseShipmentID(s string) (ShipmentID, error) { return parseID[shipmentTag](s) }
func ParseInquiryID(s string) (InquiryID, error)   { return parseID[inquiryTag](s) }
