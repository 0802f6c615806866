package domain

import (
	"time"

	"github.com/google/uuid"
)

// DTOs for API responses. Timestamps are ISO 8601 strings.

type PartyDTO struct {
	ID        uuid.UUID `json:"id"`
	PartyType PartyType `json:"partyType"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	City      string    `json:"city,omitempty"`
	Country   string    `json:"country"`
	CreatedAt string    `json:"createdAt"`
	UpdatedAt string    `json:"updatedAt"`
}

type PartyRoleDTO struct {
	ID         uuid.UUID  `json:"id"`
	PartyID    uuid.UUID  `json:"partyId"`
	PartyName  string     `json:"partyName,omitempty"`
	PartyType  PartyType  `json:"partyType,omitempty"`
	RoleName   RoleName   `json:"roleName"`
	RecordKind RecordKind `json:"recordKind"`
	RecordID   uuid.UUID  `json:"recordId"`
	CreatedAt  string     `json:"createdAt"`
}

type SubmissionDTO struct {
	ID               uuid.UUID        `json:"id"`
	SubmissionNumber string           `json:"submissionNumber"`
	Status           SubmissionStatus `json:"status"`
	LineOfBusiness   string           `json:"lineOfBusiness,omitempty"`
	Description      string           `json:"description,omitempty"`
	Completeness     int              `json:"completeness"`
	PriorityScore    int              `json:"priorityScore"`
	RiskAppetite     RiskAppetite     `json:"riskAppetite,omitempty"`
	BrokerTier       BrokerTier       `json:"brokerTier,omitempty"`
	EffectiveDate    *string          `json:"effectiveDate,omitempty"`
	Accepted         bool             `json:"accepted"`
	Version          int              `json:"version"`
	Quotes           []QuoteDTO       `json:"quotes,omitempty"`
	CreatedAt        string           `json:"createdAt"`
	UpdatedAt        string           `json:"updatedAt"`
}

type SubmissionStatusHistoryDTO struct {
	ID            uuid.UUID         `json:"id"`
	SubmissionID  uuid.UUID         `json:"submissionId"`
	FromStatus    *SubmissionStatus `json:"fromStatus,omitempty"`
	ToStatus      SubmissionStatus  `json:"toStatus"`
	ChangedByID   string            `json:"changedById,omitempty"`
	ChangedByName string            `json:"changedByName,omitempty"`
	Notes         string            `json:"notes,omitempty"`
	ChangedAt     string            `json:"changedAt"`
}

type QuoteDTO struct {
	ID             uuid.UUID   `json:"id"`
	SubmissionID   uuid.UUID   `json:"submissionId"`
	InsurerPartyID uuid.UUID   `json:"insurerPartyId"`
	InsurerName    string      `json:"insurerName,omitempty"`
	TotalPremium   float64     `json:"totalPremium"`
	Currency       string      `json:"currency"`
	Status         QuoteStatus `json:"status"`
	ValidUntil     *string     `json:"validUntil,omitempty"`
	CreatedAt      string      `json:"createdAt"`
	UpdatedAt      string      `json:"updatedAt"`
}

type PolicyDTO struct {
	ID             uuid.UUID    `json:"id"`
	PolicyNumber   string       `json:"policyNumber"`
	QuoteID        *uuid.UUID   `json:"quoteId,omitempty"`
	Status         PolicyStatus `json:"status"`
	EffectiveDate  string       `json:"effectiveDate"`
	ExpirationDate string       `json:"expirationDate"`
	Version        int          `json:"version"`
	CreatedAt      string       `json:"createdAt"`
	UpdatedAt      string       `json:"updatedAt"`
}

// PolicyDetailDTO is the eager-loaded policy projection used by reporting
type PolicyDetailDTO struct {
	PolicyDTO
	InsuredParty *PartyDTO           `json:"insuredParty,omitempty"`
	Coverages    []CoverageDTO       `json:"coverages"`
	Assets       []InsurableAssetDTO `json:"assets"`
	Claims       []ClaimDTO          `json:"claims"`
	Insurers     []PolicyInsurerDTO  `json:"insurers"`
	Treaties     []TreatyDTO         `json:"treaties"`
}

type CoverageDTO struct {
	ID               uuid.UUID `json:"id"`
	PolicyID         uuid.UUID `json:"policyId"`
	CoverageType     string    `json:"coverageType"`
	LimitAmount      float64   `json:"limitAmount"`
	DeductibleAmount float64   `json:"deductibleAmount"`
	CreatedAt        string    `json:"createdAt"`
}

type InsurableAssetDTO struct {
	ID          uuid.UUID          `json:"id"`
	PolicyID    uuid.UUID          `json:"policyId"`
	AssetType   string             `json:"assetType"`
	Description string             `json:"description,omitempty"`
	Locations   []AssetLocationDTO `json:"locations,omitempty"`
	Details     []AssetDetailDTO   `json:"details,omitempty"`
	CreatedAt   string             `json:"createdAt"`
}

type AssetLocationDTO struct {
	ID         uuid.UUID `json:"id"`
	Address    string    `json:"address"`
	City       string    `json:"city,omitempty"`
	PostalCode string    `json:"postalCode,omitempty"`
	Country    string    `json:"country,omitempty"`
}

type AssetDetailDTO struct {
	ID        uuid.UUID `json:"id"`
	DetailKey string    `json:"key"`
	Value     string    `json:"value"`
}

type ClaimDTO struct {
	ID           uuid.UUID   `json:"id"`
	ClaimNumber  string      `json:"claimNumber"`
	PolicyID     uuid.UUID   `json:"policyId"`
	Status       ClaimStatus `json:"status"`
	DateOfLoss   string      `json:"dateOfLoss"`
	ReportedDate string      `json:"reportedDate"`
	ReportedByID *uuid.UUID  `json:"reportedById,omitempty"`
	Description  string      `json:"description,omitempty"`
	CreatedAt    string      `json:"createdAt"`
	UpdatedAt    string      `json:"updatedAt"`
}

// ClaimDetailDTO is the claim-with-financials projection: the claim, its log,
// ledger, incurred totals and subrogations in one response
type ClaimDetailDTO struct {
	ClaimDTO
	PolicyNumber  string                    `json:"policyNumber,omitempty"`
	LogEntries    []ClaimLogEntryDTO        `json:"logEntries"`
	Transactions  []FinancialTransactionDTO `json:"transactions"`
	Subrogations  []SubrogationDTO          `json:"subrogations"`
	TotalIncurred float64                   `json:"totalIncurred"`
	TotalReserved float64                   `json:"totalReserved"`
	TotalPaid     float64                   `json:"totalPaid"`
}

type ClaimLogEntryDTO struct {
	ID       uuid.UUID `json:"id"`
	ClaimID  uuid.UUID `json:"claimId"`
	Entry    string    `json:"entry"`
	AuthorID string    `json:"authorId,omitempty"`
	LoggedAt string    `json:"loggedAt"`
}

type FinancialTransactionDTO struct {
	ID              uuid.UUID       `json:"id"`
	ClaimID         uuid.UUID       `json:"claimId"`
	TransactionType TransactionType `json:"transactionType"`
	Amount          float64         `json:"amount"`
	Currency        string          `json:"currency"`
	TransactionDate string          `json:"transactionDate"`
	Description     string          `json:"description,omitempty"`
	CreatedAt       string          `json:"createdAt"`
}

type SubrogationDTO struct {
	ID                      uuid.UUID         `json:"id"`
	ClaimID                 uuid.UUID         `json:"claimId"`
	LiablePartyID           uuid.UUID         `json:"liablePartyId"`
	LiablePartyName         string            `json:"liablePartyName,omitempty"`
	Status                  SubrogationStatus `json:"status"`
	PotentialRecoveryAmount float64           `json:"potentialRecoveryAmount"`
	ActualRecoveryAmount    float64           `json:"actualRecoveryAmount"`
	Notes                   string            `json:"notes,omitempty"`
	CreatedAt               string            `json:"createdAt"`
	UpdatedAt               string            `json:"updatedAt"`
}

type PolicyInsurerDTO struct {
	ID              uuid.UUID `json:"id"`
	PolicyID        uuid.UUID `json:"policyId"`
	InsurerPartyID  uuid.UUID `json:"insurerPartyId"`
	InsurerName     string    `json:"insurerName,omitempty"`
	SharePercentage float64   `json:"sharePercentage"`
	IsLead          bool      `json:"isLead"`
	CreatedAt       string    `json:"createdAt"`
}

// CoinsuranceViewDTO is the coinsurance projection for one policy
type CoinsuranceViewDTO struct {
	PolicyID     uuid.UUID          `json:"policyId"`
	PolicyNumber string             `json:"policyNumber"`
	Insurers     []PolicyInsurerDTO `json:"insurers"`
	TotalShare   float64            `json:"totalShare"`
	Balanced     bool               `json:"balanced"`
}

type TreatyDTO struct {
	ID         uuid.UUID  `json:"id"`
	PolicyID   uuid.UUID  `json:"policyId"`
	TreatyName string     `json:"treatyName,omitempty"`
	TreatyType TreatyType `json:"treatyType"`
	Layers     []LayerDTO `json:"layers,omitempty"`
	CreatedAt  string     `json:"createdAt"`
}

type LayerDTO struct {
	ID              uuid.UUID             `json:"id"`
	TreatyID        uuid.UUID             `json:"treatyId"`
	LayerOrder      int                   `json:"layerOrder"`
	AttachmentPoint float64               `json:"attachmentPoint"`
	LayerLimit      float64               `json:"layerLimit"`
	Premium         float64               `json:"premium"`
	Participants    []LayerParticipantDTO `json:"participants"`
	CreatedAt       string                `json:"createdAt"`
}

type LayerParticipantDTO struct {
	ID               uuid.UUID         `json:"id"`
	LayerID          uuid.UUID         `json:"layerId"`
	ReinsurerPartyID uuid.UUID         `json:"reinsurerPartyId"`
	ReinsurerName    string            `json:"reinsurerName,omitempty"`
	SharePercentage  float64           `json:"sharePercentage"`
	Status           ParticipantStatus `json:"status"`
	CreatedAt        string            `json:"createdAt"`
}

// TowerViewDTO is the reinsurance tower projection: ordered layers with
// participants and the "Limit xs Attachment" coverage string per layer
type TowerViewDTO struct {
	PolicyID        uuid.UUID           `json:"policyId"`
	PolicyNumber    string              `json:"policyNumber"`
	TreatyID        uuid.UUID           `json:"treatyId"`
	TreatyName      string              `json:"treatyName,omitempty"`
	TreatyType      TreatyType          `json:"treatyType"`
	Layers          []TowerLayerViewDTO `json:"layers"`
	TotalTowerLimit float64             `json:"totalTowerLimit"`
}

type TowerLayerViewDTO struct {
	LayerDTO
	CoverageString string `json:"coverageString"`
	Unplaced       bool   `json:"unplaced"`
	Balanced       bool   `json:"balanced"`
}

type CashCallDTO struct {
	ID            uuid.UUID      `json:"id"`
	CallNumber    string         `json:"callNumber"`
	ClaimID       uuid.UUID      `json:"claimId"`
	ParticipantID uuid.UUID      `json:"participantId"`
	ReinsurerName string         `json:"reinsurerName,omitempty"`
	CallAmount    float64        `json:"callAmount"`
	Currency      string         `json:"currency"`
	Status        CashCallStatus `json:"status"`
	IssuedDate    string         `json:"issuedDate"`
	DueDate       string         `json:"dueDate"`
	PaidDate      *string        `json:"paidDate,omitempty"`
	CreatedAt     string         `json:"createdAt"`
}

// AllocationResultDTO summarizes one cash-call allocation run
type AllocationResultDTO struct {
	ClaimID        uuid.UUID     `json:"claimId"`
	IncurredAmount float64       `json:"incurredAmount"`
	IssuedCalls    []CashCallDTO `json:"issuedCalls"`
	TotalCalled    float64       `json:"totalCalled"`
	LayersTouched  int           `json:"layersTouched"`
}

// BookSummaryDTO aggregates portfolio counts for the overview endpoint
type BookSummaryDTO struct {
	OpenSubmissions  int64   `json:"openSubmissions"`
	BoundSubmissions int64   `json:"boundSubmissions"`
	ActivePolicies   int64   `json:"activePolicies"`
	OpenClaims       int64   `json:"openClaims"`
	OverdueCashCalls int64   `json:"overdueCashCalls"`
	TotalCalled      float64 `json:"totalCalled"`
	TotalPaid        float64 `json:"totalPaid"`
}

type DocumentDTO struct {
	ID              uuid.UUID  `json:"id"`
	DocumentName    string     `json:"documentName"`
	ContentType     string     `json:"contentType"`
	Size            int64      `json:"size"`
	RecordKind      RecordKind `json:"recordKind"`
	RecordID        uuid.UUID  `json:"recordId"`
	UploaderPartyID *uuid.UUID `json:"uploaderPartyId,omitempty"`
	CreatedAt       string     `json:"createdAt"`
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// PaginatedResponse wraps a list payload with paging metadata
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

// NewPaginatedResponse builds a PaginatedResponse computing total pages
func NewPaginatedResponse(data interface{}, total int64, page, pageSize int) *PaginatedResponse {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &PaginatedResponse{
		Data:       data,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

// Party request DTOs
type CreatePartyRequest struct {
	PartyType PartyType `json:"partyType" validate:"required,oneof=PERSON ORGANIZATION"`
	Name      string    `json:"name" validate:"required,max=200"`
	Email     string    `json:"email,omitempty" validate:"omitempty,email"`
	Phone     string    `json:"phone,omitempty" validate:"max=50"`
	Address   string    `json:"address,omitempty" validate:"max=500"`
	City      string    `json:"city,omitempty" validate:"max=100"`
	Country   string    `json:"country,omitempty" validate:"max=100"`
}

type UpdatePartyRequest struct {
	Email   string `json:"email,omitempty" validate:"omitempty,email"`
	Phone   string `json:"phone,omitempty" validate:"max=50"`
	Address string `json:"address,omitempty" validate:"max=500"`
	City    string `json:"city,omitempty" validate:"max=100"`
	Country string `json:"country,omitempty" validate:"max=100"`
}

type AssignRoleRequest struct {
	PartyID    uuid.UUID  `json:"partyId" validate:"required"`
	RoleName   RoleName   `json:"roleName" validate:"required,max=50"`
	RecordKind RecordKind `json:"recordKind" validate:"required"`
	RecordID   uuid.UUID  `json:"recordId" validate:"required"`
}

// Submission request DTOs
type CreateSubmissionRequest struct {
	LineOfBusiness string       `json:"lineOfBusiness,omitempty" validate:"max=100"`
	Description    string       `json:"description,omitempty"`
	Completeness   int          `json:"completeness,omitempty" validate:"min=0,max=100"`
	RiskAppetite   RiskAppetite `json:"riskAppetite,omitempty" validate:"omitempty,oneof=IN OUT REFER"`
	BrokerTier     BrokerTier   `json:"brokerTier,omitempty" validate:"omitempty,oneof=A B C"`
	EffectiveDate  *time.Time   `json:"effectiveDate,omitempty"`
	BrokerPartyID  *uuid.UUID   `json:"brokerPartyId,omitempty"`
	InsuredPartyID *uuid.UUID   `json:"insuredPartyId,omitempty"`
}

type AdvanceSubmissionRequest struct {
	Status       SubmissionStatus `json:"status" validate:"required,oneof=OPEN IN_REVIEW QUOTED BOUND DECLINED"`
	Completeness *int             `json:"completeness,omitempty" validate:"omitempty,min=0,max=100"`
	Notes        string           `json:"notes,omitempty"`
}

type AddQuoteRequest struct {
	InsurerPartyID uuid.UUID  `json:"insurerPartyId" validate:"required"`
	TotalPremium   float64    `json:"totalPremium" validate:"required,gt=0"`
	Currency       string     `json:"currency,omitempty" validate:"omitempty,len=3"`
	ValidUntil     *time.Time `json:"validUntil,omitempty"`
}

type UpdateQuoteStatusRequest struct {
	Status QuoteStatus `json:"status" validate:"required,oneof=PENDING SENT ACCEPTED REJECTED"`
}

// Policy request DTOs
type BindPolicyRequest struct {
	SubmissionID   uuid.UUID `json:"submissionId" validate:"required"`
	QuoteID        uuid.UUID `json:"quoteId" validate:"required"`
	EffectiveDate  time.Time `json:"effectiveDate" validate:"required"`
	ExpirationDate time.Time `json:"expirationDate" validate:"required,gtfield=EffectiveDate"`
}

type AddCoverageRequest struct {
	CoverageType     string  `json:"coverageType" validate:"required,max=100"`
	LimitAmount      float64 `json:"limitAmount" validate:"required,gt=0"`
	DeductibleAmount float64 `json:"deductibleAmount" validate:"gte=0"`
}

type AddAssetRequest struct {
	AssetType   string                    `json:"assetType" validate:"required,max=100"`
	Description string                    `json:"description,omitempty" validate:"max=500"`
	Locations   []AddAssetLocationRequest `json:"locations,omitempty" validate:"dive"`
	Details     []AddAssetDetailRequest   `json:"details,omitempty" validate:"dive"`
}

type AddAssetLocationRequest struct {
	Address    string `json:"address" validate:"required,max=500"`
	City       string `json:"city,omitempty" validate:"max=100"`
	PostalCode string `json:"postalCode,omitempty" validate:"max=20"`
	Country    string `json:"country,omitempty" validate:"max=100"`
}

type AddAssetDetailRequest struct {
	Key   string `json:"key" validate:"required,max=100"`
	Value string `json:"value" validate:"required,max=500"`
}

// Claim request DTOs
type FileClaimRequest struct {
	PolicyID     uuid.UUID  `json:"policyId" validate:"required"`
	DateOfLoss   time.Time  `json:"dateOfLoss" validate:"required"`
	ReportedDate *time.Time `json:"reportedDate,omitempty"`
	ReportedByID *uuid.UUID `json:"reportedById,omitempty"`
	Description  string     `json:"description,omitempty"`
}

type UpdateClaimStatusRequest struct {
	Status ClaimStatus `json:"status" validate:"required,oneof=OPEN UNDER_REVIEW SETTLED CLOSED"`
	Notes  string      `json:"notes,omitempty"`
}

type AddClaimLogEntryRequest struct {
	Entry string `json:"entry" validate:"required"`
}

type PostTransactionRequest struct {
	TransactionType TransactionType `json:"transactionType" validate:"required,oneof=RESERVE PAYMENT_EXPENSE PAYMENT_INDEMNITY"`
	Amount          float64         `json:"amount" validate:"required,gt=0"`
	Currency        string          `json:"currency,omitempty" validate:"omitempty,len=3"`
	TransactionDate *time.Time      `json:"transactionDate,omitempty"`
	Description     string          `json:"description,omitempty" validate:"max=500"`
}

// Subrogation request DTOs
type RecordSubrogationRequest struct {
	LiablePartyID           uuid.UUID `json:"liablePartyId" validate:"required"`
	PotentialRecoveryAmount float64   `json:"potentialRecoveryAmount" validate:"required,gt=0"`
	Notes                   string    `json:"notes,omitempty"`
}

type RecordRecoveryRequest struct {
	ActualRecoveryAmount float64 `json:"actualRecoveryAmount" validate:"required,gt=0"`
}

// Coinsurance request DTOs
type AddCoinsurerRequest struct {
	InsurerPartyID  uuid.UUID `json:"insurerPartyId" validate:"required"`
	SharePercentage float64   `json:"sharePercentage" validate:"required,gt=0,lte=100"`
	IsLead          bool      `json:"isLead"`
}

// Reinsurance request DTOs
type CreateTreatyRequest struct {
	TreatyName string     `json:"treatyName,omitempty" validate:"max=200"`
	TreatyType TreatyType `json:"treatyType,omitempty" validate:"omitempty,oneof=FACULTATIVE QUOTA_SHARE EXCESS_OF_LOSS"`
}

type DefineLayerRequest struct {
	LayerOrder      int     `json:"layerOrder" validate:"required,gt=0"`
	AttachmentPoint float64 `json:"attachmentPoint" validate:"gte=0"`
	LayerLimit      float64 `json:"layerLimit" validate:"required,gt=0"`
	Premium         float64 `json:"premium,omitempty" validate:"gte=0"`
}

type AddLayerParticipantRequest struct {
	ReinsurerPartyID uuid.UUID         `json:"reinsurerPartyId" validate:"required"`
	SharePercentage  float64           `json:"sharePercentage" validate:"required,gt=0,lte=100"`
	Status           ParticipantStatus `json:"status,omitempty" validate:"omitempty,oneof=QUOTED BOUND"`
}

// Cash-call request DTOs
type RunAllocationRequest struct {
	// IncurredAmount overrides the ledger-derived incurred figure when set
	IncurredAmount *float64 `json:"incurredAmount,omitempty" validate:"omitempty,gt=0"`
}
