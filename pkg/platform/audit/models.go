package audit

import (
	"context"
	"time"

	id "terralegit/pkg/domain"
)

// EntityType names the kind of record an audit entry is about.
type EntityType string

const (
	EntityUser            EntityType = "user"
	EntitySellerProfile   EntityType = "seller_profile"
	EntityBuyerProfile    EntityType = "buyer_profile"
	EntitySpecies         EntityType = "species"
	EntityCountryRule     EntityType = "country_rule"
	EntityListing         EntityType = "listing"
	EntityDocument        EntityType = "document"
	EntityAcquisitionCase EntityType = "acquisition_case"
	EntityShipment        EntityType = "shipment"
)

// Action is the audited verb.
type Action string

const (
	// Identity actions
	ActionUserRegistered         Action = "user_registered"
	ActionVerificationChanged    Action = "verification_status_changed"
	ActionRoleEscalated          Action = "role_escalated"
	ActionSellerProfileCreated   Action = "seller_profile_created"
	ActionBuyerProfileCreated    Action = "buyer_profile_created"
	ActionSellerAuditReviewed    Action = "seller_audit_reviewed"
	ActionSpeciesAdded           Action = "species_added"
	ActionCountryRuleUpserted    Action = "country_rule_upserted"
	ActionCountryRuleDeactivated Action = "country_rule_deactivated"

	// Document actions
	ActionDocumentUploaded      Action = "document_uploaded"
	ActionDocumentStatusChanged Action = "document_status_changed"

	// Lifecycle actions
	ActionListingCreated       Action = "listing_created"
	ActionListingTransitioned  Action = "listing_transitioned"
	ActionCaseOpened           Action = "case_opened"
	ActionComplianceAdvanced   Action = "compliance_transitioned"
	ActionPaymentTransitioned  Action = "payment_transitioned"
	ActionFundsReleased        Action = "funds_released"
	ActionCaseWithdrawn        Action = "case_withdrawn"
	ActionShipmentCreated      Action = "shipment_created"
	ActionShipmentTransitioned Action = "shipment_transitioned"
	ActionCheckpointRecorded   Action = "welfare_checkpoint_recorded"
	ActionWelfareHoldCleared   Action = "welfare_hold_cleared"
)

// Entry is one append-only audit log record. Entries are never updated or
// deleted.
type Entry struct {
	ID         id.AuditLogID
	ActorID    string
	Action     Action
	EntityType EntityType
	EntityID   string
	Details    map[string]any
	RequestID  string
	Timestamp  time.Time
}

// Store persists audit entries. Append must participate in the unit of work
// carried by ctx so the entry and the state change commit together.
type Store interface {
	Append(ctx context.Context, entry Entry) error
	ListByEntity(ctx context.Context, entityType EntityType, entityID string) ([]Entry, error)
	ListRecent(ctx context.Context, limit int) ([]Entry, error)
}
