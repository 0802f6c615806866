package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns the id app-side; the schema carries no database-side
// uuid default so the models migrate cleanly on any dialect
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// PartyType represents the legal nature of a party
type PartyType string

const (
	PartyTypePerson       PartyType = "PERSON"
	PartyTypeOrganization PartyType = "ORGANIZATION"
)

// IsValid checks if the PartyType is a valid enum value
func (pt PartyType) IsValid() bool {
	switch pt {
	case PartyTypePerson, PartyTypeOrganization:
		return true
	}
	return false
}

// Party represents a distinct legal or natural entity. Identity is immutable,
// contact fields are not. Parties are referenced by many records and owned by none.
type Party struct {
	BaseModel
	PartyType PartyType `gorm:"type:varchar(20);not null;index;column:party_type"`
	Name      string    `gorm:"type:varchar(200);not null;index"`
	Email     string    `gorm:"type:varchar(255)"`
	Phone     string    `gorm:"type:varchar(50)"`
	Address   string    `gorm:"type:varchar(500)"`
	City      string    `gorm:"type:varchar(100)"`
	Country   string    `gorm:"type:varchar(100);not null;default:'Switzerland'"`
}

// RoleName represents the function a party performs on a record
type RoleName string

const (
	RoleInsured     RoleName = "Insured"
	RoleBroker      RoleName = "Broker"
	RoleInsurer     RoleName = "Insurer"
	RoleLeadInsurer RoleName = "Lead Insurer"
	RoleCoInsurer   RoleName = "Co-insurer"
	RoleReinsurer   RoleName = "Reinsurer"
	RoleAdjuster    RoleName = "Adjuster"
	RoleClaimant    RoleName = "Claimant"
	RoleLiableParty RoleName = "Liable Party"
)

// IsSingular reports whether at most one party may hold this role on one record
func (rn RoleName) IsSingular() bool {
	switch rn {
	case RoleInsured, RoleLeadInsurer:
		return true
	}
	return false
}

// RecordKind identifies the table a polymorphic association points at.
// The set is closed so the application, not a free-form string, decides
// which tables may carry roles and documents.
type RecordKind string

const (
	RecordKindParty      RecordKind = "party"
	RecordKindSubmission RecordKind = "submission"
	RecordKindQuote      RecordKind = "quote"
	RecordKindPolicy     RecordKind = "policy"
	RecordKindClaim      RecordKind = "claim"
	RecordKindTreaty     RecordKind = "reinsurance_treaty"
	RecordKindCashCall   RecordKind = "cash_call"
)

// IsValid checks if the RecordKind is a valid enum value
func (rk RecordKind) IsValid() bool {
	switch rk {
	case RecordKindParty, RecordKindSubmission, RecordKindQuote, RecordKindPolicy,
		RecordKindClaim, RecordKindTreaty, RecordKindCashCall:
		return true
	}
	return false
}

// PartyRole links a party to a role it plays on a specific record, identified
// by RecordKind plus id. The database cannot enforce the cross-table reference,
// so services validate RecordKind and record existence before writing.
type PartyRole struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key"`
	PartyID    uuid.UUID  `gorm:"type:uuid;not null;index;column:party_id;uniqueIndex:idx_party_role_unique"`
	Party      *Party     `gorm:"foreignKey:PartyID"`
	RoleName   RoleName   `gorm:"type:varchar(50);not null;column:role_name;uniqueIndex:idx_party_role_unique"`
	RecordKind RecordKind `gorm:"type:varchar(50);not null;index:idx_party_role_record;column:record_kind;uniqueIndex:idx_party_role_unique"`
	RecordID   uuid.UUID  `gorm:"type:uuid;not null;index:idx_party_role_record;column:record_id;uniqueIndex:idx_party_role_unique"`
	CreatedAt  time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (pr *PartyRole) BeforeCreate(tx *gorm.DB) error {
	if pr.ID == uuid.Nil {
		pr.ID = uuid.New()
	}
	return nil
}

// SubmissionStatus represents the underwriting lifecycle state of a submission
type SubmissionStatus string

const (
	SubmissionStatusOpen     SubmissionStatus = "OPEN"
	SubmissionStatusInReview SubmissionStatus = "IN_REVIEW"
	SubmissionStatusQuoted   SubmissionStatus = "QUOTED"
	SubmissionStatusBound    SubmissionStatus = "BOUND"
	SubmissionStatusDeclined SubmissionStatus = "DECLINED"
)

// IsValid checks if the SubmissionStatus is a valid enum value
func (ss SubmissionStatus) IsValid() bool {
	switch ss {
	case SubmissionStatusOpen, SubmissionStatusInReview, SubmissionStatusQuoted,
		SubmissionStatusBound, SubmissionStatusDeclined:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is allowed from this status
func (ss SubmissionStatus) IsTerminal() bool {
	return ss == SubmissionStatusBound || ss == SubmissionStatusDeclined
}

// RiskAppetite represents the underwriting appetite verdict for a submission
type RiskAppetite string

const (
	RiskAppetiteIn    RiskAppetite = "IN"
	RiskAppetiteOut   RiskAppetite = "OUT"
	RiskAppetiteRefer RiskAppetite = "REFER"
)

// IsValid checks if the RiskAppetite is a valid enum value
func (ra RiskAppetite) IsValid() bool {
	switch ra {
	case RiskAppetiteIn, RiskAppetiteOut, RiskAppetiteRefer:
		return true
	}
	return false
}

// BrokerTier represents the producing broker's service tier
type BrokerTier string

const (
	BrokerTierA BrokerTier = "A"
	BrokerTierB BrokerTier = "B"
	BrokerTierC BrokerTier = "C"
)

// IsValid checks if the BrokerTier is a valid enum value
func (bt BrokerTier) IsValid() bool {
	switch bt {
	case BrokerTierA, BrokerTierB, BrokerTierC:
		return true
	}
	return false
}

// Submission represents an underwriting request from a broker.
// Version is bumped on every update for optimistic concurrency.
type Submission struct {
	BaseModel
	SubmissionNumber string           `gorm:"type:varchar(50);unique;index;column:submission_number"`
	Status           SubmissionStatus `gorm:"type:varchar(50);not null;default:'OPEN';index"`
	LineOfBusiness   string           `gorm:"type:varchar(100);column:line_of_business"`
	Description      string           `gorm:"type:text"`
	Completeness     int              `gorm:"type:int;not null;default:0"`
	PriorityScore    int              `gorm:"type:int;not null;default:0;column:priority_score"`
	RiskAppetite     RiskAppetite     `gorm:"type:varchar(20);default:'REFER';column:risk_appetite"`
	BrokerTier       BrokerTier       `gorm:"type:varchar(10);column:broker_tier"`
	EffectiveDate    *time.Time       `gorm:"type:date;column:effective_date"`
	Accepted         bool             `gorm:"not null;default:false"`
	Version          int              `gorm:"not null;default:1"`
	Quotes           []Quote          `gorm:"foreignKey:SubmissionID;constraint:OnDelete:CASCADE"`
}

// SubmissionStatusHistory tracks status changes for audit purposes
type SubmissionStatusHistory struct {
	ID            uuid.UUID         `gorm:"type:uuid;primary_key"`
	SubmissionID  uuid.UUID         `gorm:"type:uuid;not null;index;column:submission_id"`
	Submission    *Submission       `gorm:"foreignKey:SubmissionID"`
	FromStatus    *SubmissionStatus `gorm:"type:varchar(50);column:from_status"`
	ToStatus      SubmissionStatus  `gorm:"type:varchar(50);not null;column:to_status"`
	ChangedByID   string            `gorm:"type:varchar(100);column:changed_by_id"`
	ChangedByName string            `gorm:"type:varchar(200);column:changed_by_name"`
	Notes         string            `gorm:"type:text"`
	ChangedAt     time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP;column:changed_at"`
}

// TableName overrides the default table name to match the migration
func (SubmissionStatusHistory) TableName() string {
	return "submission_status_history"
}

func (h *SubmissionStatusHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}

// QuoteStatus represents the status of a quote
type QuoteStatus string

const (
	QuoteStatusPending  QuoteStatus = "PENDING"
	QuoteStatusSent     QuoteStatus = "SENT"
	QuoteStatusAccepted QuoteStatus = "ACCEPTED"
	QuoteStatusRejected QuoteStatus = "REJECTED"
)

// IsValid checks if the QuoteStatus is a valid enum value
func (qs QuoteStatus) IsValid() bool {
	switch qs {
	case QuoteStatusPending, QuoteStatusSent, QuoteStatusAccepted, QuoteStatusRejected:
		return true
	}
	return false
}

// Quote represents a premium offer issued by an insurer for a submission.
// A submission may hold several competing quotes; at most one may be ACCEPTED.
type Quote struct {
	BaseModel
	SubmissionID   uuid.UUID   `gorm:"type:uuid;not null;index;column:submission_id"`
	Submission     *Submission `gorm:"foreignKey:SubmissionID"`
	InsurerPartyID uuid.UUID   `gorm:"type:uuid;not null;index;column:insurer_party_id"`
	InsurerParty   *Party      `gorm:"foreignKey:InsurerPartyID"`
	TotalPremium   float64     `gorm:"type:decimal(15,2);not null;column:total_premium"`
	Currency       string      `gorm:"type:varchar(3);not null;default:'CHF'"`
	Status         QuoteStatus `gorm:"type:varchar(50);not null;default:'PENDING';index"`
	ValidUntil     *time.Time  `gorm:"type:date;column:valid_until"`
}

// PolicyStatus represents the status of a policy
type PolicyStatus string

const (
	PolicyStatusActive    PolicyStatus = "ACTIVE"
	PolicyStatusExpired   PolicyStatus = "EXPIRED"
	PolicyStatusCancelled PolicyStatus = "CANCELLED"
)

// IsValid checks if the PolicyStatus is a valid enum value
func (ps PolicyStatus) IsValid() bool {
	switch ps {
	case PolicyStatusActive, PolicyStatusExpired, PolicyStatusCancelled:
		return true
	}
	return false
}

// Policy represents a bound insurance contract. A policy owns its coverages,
// assets, claims, coinsurer rows and treaties: deleting the policy deletes them.
// QuoteID is nullable for policies migrated without an originating quote.
// Version is bumped on every update for optimistic concurrency.
type Policy struct {
	BaseModel
	PolicyNumber   string              `gorm:"type:varchar(50);not null;unique;index;column:policy_number"`
	QuoteID        *uuid.UUID          `gorm:"type:uuid;index;column:quote_id"`
	Quote          *Quote              `gorm:"foreignKey:QuoteID"`
	Status         PolicyStatus        `gorm:"type:varchar(50);not null;default:'ACTIVE';index"`
	EffectiveDate  time.Time           `gorm:"type:date;not null;column:effective_date"`
	ExpirationDate time.Time           `gorm:"type:date;not null;column:expiration_date"`
	Version        int                 `gorm:"not null;default:1"`
	Coverages      []Coverage          `gorm:"foreignKey:PolicyID;constraint:OnDelete:CASCADE"`
	Assets         []InsurableAsset    `gorm:"foreignKey:PolicyID;constraint:OnDelete:CASCADE"`
	Claims         []Claim             `gorm:"foreignKey:PolicyID;constraint:OnDelete:CASCADE"`
	Insurers       []PolicyInsurer     `gorm:"foreignKey:PolicyID;constraint:OnDelete:CASCADE"`
	Treaties       []ReinsuranceTreaty `gorm:"foreignKey:PolicyID;constraint:OnDelete:CASCADE"`
}

// Coverage represents one covered peril on a policy with its terms
type Coverage struct {
	BaseModel
	PolicyID         uuid.UUID `gorm:"type:uuid;not null;index;column:policy_id"`
	Policy           *Policy   `gorm:"foreignKey:PolicyID"`
	CoverageType     string    `gorm:"type:varchar(100);not null;column:coverage_type"`
	LimitAmount      float64   `gorm:"type:decimal(15,2);not null;column:limit_amount"`
	DeductibleAmount float64   `gorm:"type:decimal(15,2);not null;default:0;column:deductible_amount"`
}

// InsurableAsset represents an insured object belonging to exactly one policy
type InsurableAsset struct {
	BaseModel
	PolicyID    uuid.UUID       `gorm:"type:uuid;not null;index;column:policy_id"`
	Policy      *Policy         `gorm:"foreignKey:PolicyID"`
	AssetType   string          `gorm:"type:varchar(100);not null;column:asset_type"`
	Description string          `gorm:"type:varchar(500)"`
	Locations   []AssetLocation `gorm:"foreignKey:AssetID;constraint:OnDelete:CASCADE"`
	Details     []AssetDetail   `gorm:"foreignKey:AssetID;constraint:OnDelete:CASCADE"`
}

// AssetLocation represents a physical location of an insurable asset
type AssetLocation struct {
	ID         uuid.UUID       `gorm:"type:uuid;primary_key"`
	AssetID    uuid.UUID       `gorm:"type:uuid;not null;index;column:asset_id"`
	Asset      *InsurableAsset `gorm:"foreignKey:AssetID"`
	Address    string          `gorm:"type:varchar(500);not null"`
	City       string          `gorm:"type:varchar(100)"`
	PostalCode string          `gorm:"type:varchar(20);column:postal_code"`
	Country    string          `gorm:"type:varchar(100)"`
	CreatedAt  time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (l *AssetLocation) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// AssetDetail represents a free-form key/value attribute of an asset,
// e.g. "Replacement Value" or "Construction Class"
type AssetDetail struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key"`
	AssetID   uuid.UUID       `gorm:"type:uuid;not null;index;column:asset_id"`
	Asset     *InsurableAsset `gorm:"foreignKey:AssetID"`
	DetailKey string          `gorm:"type:varchar(100);not null;column:detail_key"`
	Value     string          `gorm:"type:varchar(500);not null;column:detail_value"`
	CreatedAt time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (d *AssetDetail) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// ClaimStatus represents the status of a claim
type ClaimStatus string

const (
	ClaimStatusOpen        ClaimStatus = "OPEN"
	ClaimStatusUnderReview ClaimStatus = "UNDER_REVIEW"
	ClaimStatusSettled     ClaimStatus = "SETTLED"
	ClaimStatusClosed      ClaimStatus = "CLOSED"
)

// IsValid checks if the ClaimStatus is a valid enum value
func (cs ClaimStatus) IsValid() bool {
	switch cs {
	case ClaimStatusOpen, ClaimStatusUnderReview, ClaimStatusSettled, ClaimStatusClosed:
		return true
	}
	return false
}

// Claim represents a reported loss against a policy. A claim owns its log
// entries, financial transactions, subrogations and cash calls.
type Claim struct {
	BaseModel
	ClaimNumber      string                 `gorm:"type:varchar(50);not null;unique;index;column:claim_number"`
	PolicyID         uuid.UUID              `gorm:"type:uuid;not null;index;column:policy_id"`
	Policy           *Policy                `gorm:"foreignKey:PolicyID"`
	Status           ClaimStatus            `gorm:"type:varchar(50);not null;default:'OPEN';index"`
	DateOfLoss       time.Time              `gorm:"type:date;not null;column:date_of_loss"`
	ReportedDate     time.Time              `gorm:"type:date;not null;column:reported_date"`
	ReportedByID     *uuid.UUID             `gorm:"type:uuid;column:reported_by_party_id"`
	ReportedBy       *Party                 `gorm:"foreignKey:ReportedByID"`
	Description      string                 `gorm:"type:text"`
	LogEntries       []ClaimLogEntry        `gorm:"foreignKey:ClaimID;constraint:OnDelete:CASCADE"`
	Transactions     []FinancialTransaction `gorm:"foreignKey:ClaimID;constraint:OnDelete:CASCADE"`
	Subrogations     []Subrogation          `gorm:"foreignKey:ClaimID;constraint:OnDelete:CASCADE"`
	CashCalls        []CashCall             `gorm:"foreignKey:ClaimID;constraint:OnDelete:CASCADE"`
}

// ClaimLogEntry represents one timestamped narrative entry in a claim's log.
// Entries are append-only.
type ClaimLogEntry struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	ClaimID   uuid.UUID `gorm:"type:uuid;not null;index;column:claim_id"`
	Claim     *Claim    `gorm:"foreignKey:ClaimID"`
	Entry     string    `gorm:"type:text;not null"`
	AuthorID  string    `gorm:"type:varchar(100);column:author_id"`
	LoggedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index;column:logged_at"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName overrides the default table name to match the migration
func (ClaimLogEntry) TableName() string {
	return "claim_detail"
}

func (e *ClaimLogEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// TransactionType represents the kind of financial movement on a claim
type TransactionType string

const (
	TransactionTypeReserve          TransactionType = "RESERVE"
	TransactionTypePaymentExpense   TransactionType = "PAYMENT_EXPENSE"
	TransactionTypePaymentIndemnity TransactionType = "PAYMENT_INDEMNITY"
)

// IsValid checks if the TransactionType is a valid enum value
func (tt TransactionType) IsValid() bool {
	switch tt {
	case TransactionTypeReserve, TransactionTypePaymentExpense, TransactionTypePaymentIndemnity:
		return true
	}
	return false
}

// FinancialTransaction represents one movement on a claim's financial ledger.
// Rows are append-only and never mutated.
type FinancialTransaction struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key"`
	ClaimID         uuid.UUID       `gorm:"type:uuid;not null;index;column:claim_id"`
	Claim           *Claim          `gorm:"foreignKey:ClaimID"`
	TransactionType TransactionType `gorm:"type:varchar(50);not null;column:transaction_type"`
	Amount          float64         `gorm:"type:decimal(15,2);not null"`
	Currency        string          `gorm:"type:varchar(3);not null;default:'CHF'"`
	TransactionDate time.Time       `gorm:"type:date;not null;column:transaction_date"`
	Description     string          `gorm:"type:varchar(500)"`
	CreatedAt       time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (t *FinancialTransaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// SubrogationStatus represents the recovery workflow state
type SubrogationStatus string

const (
	SubrogationStatusIdentified SubrogationStatus = "IDENTIFIED"
	SubrogationStatusInProgress SubrogationStatus = "IN_PROGRESS"
	SubrogationStatusRecovered  SubrogationStatus = "RECOVERED"
	SubrogationStatusClosed     SubrogationStatus = "CLOSED"
)

// IsValid checks if the SubrogationStatus is a valid enum value
func (ss SubrogationStatus) IsValid() bool {
	switch ss {
	case SubrogationStatusIdentified, SubrogationStatusInProgress,
		SubrogationStatusRecovered, SubrogationStatusClosed:
		return true
	}
	return false
}

// Subrogation represents a recovery opportunity against a liable third party.
// ActualRecoveryAmount may never exceed PotentialRecoveryAmount.
type Subrogation struct {
	BaseModel
	ClaimID                 uuid.UUID         `gorm:"type:uuid;not null;index;column:claim_id"`
	Claim                   *Claim            `gorm:"foreignKey:ClaimID"`
	LiablePartyID           uuid.UUID         `gorm:"type:uuid;not null;column:liable_party_id"`
	LiableParty             *Party            `gorm:"foreignKey:LiablePartyID"`
	Status                  SubrogationStatus `gorm:"type:varchar(50);not null;default:'IDENTIFIED';index"`
	PotentialRecoveryAmount float64           `gorm:"type:decimal(15,2);not null;column:potential_recovery_amount"`
	ActualRecoveryAmount    float64           `gorm:"type:decimal(15,2);not null;default:0;column:actual_recovery_amount"`
	Notes                   string            `gorm:"type:text"`
}

// PolicyInsurer represents one coinsurer's horizontal share of a policy.
// Shares across a policy must sum to 100 and exactly one row is the lead.
type PolicyInsurer struct {
	BaseModel
	PolicyID        uuid.UUID `gorm:"type:uuid;not null;index;column:policy_id;uniqueIndex:idx_policy_insurer_unique"`
	Policy          *Policy   `gorm:"foreignKey:PolicyID"`
	InsurerPartyID  uuid.UUID `gorm:"type:uuid;not null;column:insurer_party_id;uniqueIndex:idx_policy_insurer_unique"`
	InsurerParty    *Party    `gorm:"foreignKey:InsurerPartyID"`
	SharePercentage float64   `gorm:"type:decimal(5,2);not null;column:share_percentage"`
	IsLead          bool      `gorm:"not null;default:false;column:is_lead"`
}

// TreatyType represents the form of a reinsurance agreement
type TreatyType string

const (
	TreatyTypeFacultative TreatyType = "FACULTATIVE"
	TreatyTypeQuotaShare  TreatyType = "QUOTA_SHARE"
	TreatyTypeExcessLoss  TreatyType = "EXCESS_OF_LOSS"
)

// IsValid checks if the TreatyType is a valid enum value
func (tt TreatyType) IsValid() bool {
	switch tt {
	case TreatyTypeFacultative, TreatyTypeQuotaShare, TreatyTypeExcessLoss:
		return true
	}
	return false
}

// ReinsuranceTreaty represents the vertical risk-sharing agreement on a policy.
// It is the container for the ordered stack of layers forming the tower.
type ReinsuranceTreaty struct {
	BaseModel
	PolicyID   uuid.UUID          `gorm:"type:uuid;not null;index;column:policy_id"`
	Policy     *Policy            `gorm:"foreignKey:PolicyID"`
	TreatyName string             `gorm:"type:varchar(200);column:treaty_name"`
	TreatyType TreatyType         `gorm:"type:varchar(50);not null;default:'FACULTATIVE';column:treaty_type"`
	Layers     []ReinsuranceLayer `gorm:"foreignKey:TreatyID;constraint:OnDelete:CASCADE"`
}

// ReinsuranceLayer represents one layer of a tower. Layers are ordered by
// LayerOrder and contiguous: a layer's attachment point equals the previous
// layer's attachment point plus its limit.
type ReinsuranceLayer struct {
	BaseModel
	TreatyID        uuid.UUID          `gorm:"type:uuid;not null;index;column:treaty_id;uniqueIndex:idx_layer_order_unique"`
	Treaty          *ReinsuranceTreaty `gorm:"foreignKey:TreatyID"`
	LayerOrder      int                `gorm:"type:int;not null;column:layer_order;uniqueIndex:idx_layer_order_unique"`
	AttachmentPoint float64            `gorm:"type:decimal(15,2);not null;column:attachment_point"`
	LayerLimit      float64            `gorm:"type:decimal(15,2);not null;column:layer_limit"`
	Premium         float64            `gorm:"type:decimal(15,2);not null;default:0"`
	Participants    []LayerParticipant `gorm:"foreignKey:LayerID;constraint:OnDelete:CASCADE"`
}

// ParticipantStatus represents a reinsurer's commitment state on a layer
type ParticipantStatus string

const (
	ParticipantStatusQuoted ParticipantStatus = "QUOTED"
	ParticipantStatusBound  ParticipantStatus = "BOUND"
)

// IsValid checks if the ParticipantStatus is a valid enum value
func (ps ParticipantStatus) IsValid() bool {
	switch ps {
	case ParticipantStatusQuoted, ParticipantStatusBound:
		return true
	}
	return false
}

// LayerParticipant represents one reinsurer's percentage share of a layer.
// Shares across a layer must sum to 100 before allocation may run against it.
type LayerParticipant struct {
	BaseModel
	LayerID           uuid.UUID         `gorm:"type:uuid;not null;index;column:layer_id;uniqueIndex:idx_layer_participant_unique"`
	Layer             *ReinsuranceLayer `gorm:"foreignKey:LayerID"`
	ReinsurerPartyID  uuid.UUID         `gorm:"type:uuid;not null;column:reinsurer_party_id;uniqueIndex:idx_layer_participant_unique"`
	ReinsurerParty    *Party            `gorm:"foreignKey:ReinsurerPartyID"`
	SharePercentage   float64           `gorm:"type:decimal(5,2);not null;column:share_percentage"`
	Status            ParticipantStatus `gorm:"type:varchar(50);not null;default:'QUOTED'"`
}

// CashCallStatus represents the settlement state of a cash call
type CashCallStatus string

const (
	CashCallStatusIssued CashCallStatus = "ISSUED"
	CashCallStatusPaid   CashCallStatus = "PAID"
)

// IsValid checks if the CashCallStatus is a valid enum value
func (cs CashCallStatus) IsValid() bool {
	switch cs {
	case CashCallStatusIssued, CashCallStatusPaid:
		return true
	}
	return false
}

// CashCall represents a non-rescindable demand for a participant's share of a
// claim payment. Rows are append-only; amounts are never mutated after issue.
// PAID is terminal. Version is bumped on status changes for optimistic concurrency.
type CashCall struct {
	BaseModel
	CallNumber    string            `gorm:"type:varchar(50);unique;index;column:call_number"`
	ClaimID       uuid.UUID         `gorm:"type:uuid;not null;index;column:claim_id"`
	Claim         *Claim            `gorm:"foreignKey:ClaimID"`
	ParticipantID uuid.UUID         `gorm:"type:uuid;not null;index;column:participant_id"`
	Participant   *LayerParticipant `gorm:"foreignKey:ParticipantID"`
	CallAmount    float64           `gorm:"type:decimal(15,2);not null;column:call_amount"`
	Currency      string            `gorm:"type:varchar(3);not null;default:'CHF'"`
	Status        CashCallStatus    `gorm:"type:varchar(50);not null;default:'ISSUED';index"`
	IssuedDate    time.Time         `gorm:"type:date;not null;column:issued_date"`
	DueDate       time.Time         `gorm:"type:date;not null;column:due_date"`
	PaidDate      *time.Time        `gorm:"type:date;column:paid_date"`
	Version       int               `gorm:"not null;default:1"`
}

// Document represents an attachment's metadata. Binary content lives in blob
// storage under StoragePath; the row links it to any RecordKind.
type Document struct {
	BaseModel
	DocumentName     string     `gorm:"type:varchar(255);not null;column:document_name"`
	ContentType      string     `gorm:"type:varchar(100);not null;column:content_type"`
	Size             int64      `gorm:"not null"`
	StoragePath      string     `gorm:"type:varchar(500);not null;unique;column:storage_path"`
	RecordKind       RecordKind `gorm:"type:varchar(50);not null;index:idx_document_record;column:record_kind"`
	RecordID         uuid.UUID  `gorm:"type:uuid;not null;index:idx_document_record;column:record_id"`
	UploaderPartyID  *uuid.UUID `gorm:"type:uuid;column:uploader_party_id"`
	UploaderParty    *Party     `gorm:"foreignKey:UploaderPartyID"`
}

// NumberSequence tracks the last issued business number per entity type and year
type NumberSequence struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	EntityType   string    `gorm:"type:varchar(50);not null;column:entity_type;uniqueIndex:idx_number_sequence_unique"`
	Year         int       `gorm:"type:int;not null;uniqueIndex:idx_number_sequence_unique"`
	LastSequence int       `gorm:"type:int;not null;default:0;column:last_sequence"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (s *NumberSequence) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// AuditAction represents the type of audit action
type AuditAction string

const (
	AuditActionCreate  AuditAction = "create"
	AuditActionUpdate  AuditAction = "update"
	AuditActionDelete  AuditAction = "delete"
	AuditActionAPICall AuditAction = "api_call"
)

// AuditLog represents an audit trail entry for a mutating API call
type AuditLog struct {
	ID          uuid.UUID   `gorm:"type:uuid;primary_key"`
	UserID      string      `gorm:"type:varchar(100);column:user_id"`
	UserName    string      `gorm:"type:varchar(200);column:user_name"`
	Action      AuditAction `gorm:"type:varchar(50);not null"`
	EntityType  string      `gorm:"type:varchar(50);not null;column:entity_type"`
	EntityID    *uuid.UUID  `gorm:"type:uuid;column:entity_id"`
	Method      string      `gorm:"type:varchar(10)"`
	Path        string      `gorm:"type:varchar(500)"`
	StatusCode  int         `gorm:"column:status_code"`
	IPAddress   string      `gorm:"type:varchar(100);column:ip_address"`
	RequestID   string      `gorm:"type:varchar(100);column:request_id"`
	PerformedAt time.Time   `gorm:"not null;default:CURRENT_TIMESTAMP;column:performed_at"`
	CreatedAt   time.Time   `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
