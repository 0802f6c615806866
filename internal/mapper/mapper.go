package mapper

import (
	"github.com/lucerne-re/policy-api/internal/domain"
)

const (
	timestampFormat = "2006-01-02T15:04:05Z"
	dateFormat      = "2006-01-02"
)

// ToPartyDTO converts Party to PartyDTO
func ToPartyDTO(party *domain.Party) domain.PartyDTO {
	return domain.PartyDTO{
		ID:        party.ID,
		PartyType: party.PartyType,
		Name:      party.Name,
		Email:     party.Email,
		Phone:     party.Phone,
		Address:   party.Address,
		City:      party.City,
		Country:   party.Country,
		CreatedAt: party.CreatedAt.Format(timestampFormat),
		UpdatedAt: party.UpdatedAt.Format(timestampFormat),
	}
}

// ToPartyRoleDTO converts PartyRole to PartyRoleDTO, flattening the party
// name when the association is loaded
func ToPartyRoleDTO(role *domain.PartyRole) domain.PartyRoleDTO {
	dto := domain.PartyRoleDTO{
		ID:         role.ID,
		PartyID:    role.PartyID,
		RoleName:   role.RoleName,
		RecordKind: role.RecordKind,
		RecordID:   role.RecordID,
		CreatedAt:  role.CreatedAt.Format(timestampFormat),
	}
	if role.Party != nil {
		dto.PartyName = role.Party.Name
		dto.PartyType = role.Party.PartyType
	}
	return dto
}

// ToSubmissionDTO converts Submission to SubmissionDTO including loaded quotes
func ToSubmissionDTO(submission *domain.Submission) domain.SubmissionDTO {
	dto := domain.SubmissionDTO{
		ID:               submission.ID,
		SubmissionNumber: submission.SubmissionNumber,
		Status:           submission.Status,
		LineOfBusiness:   submission.LineOfBusiness,
		Description:      submission.Description,
		Completeness:     submission.Completeness,
		PriorityScore:    submission.PriorityScore,
		RiskAppetite:     submission.RiskAppetite,
		BrokerTier:       submission.BrokerTier,
		Accepted:         submission.Accepted,
		Version:          submission.Version,
		CreatedAt:        submission.CreatedAt.Format(timestampFormat),
		UpdatedAt:        submission.UpdatedAt.Format(timestampFormat),
	}
	if submission.EffectiveDate != nil {
		effective := submission.EffectiveDate.Format(dateFormat)
		dto.EffectiveDate = &effective
	}
	for i := range submission.Quotes {
		dto.Quotes = append(dto.Quotes, ToQuoteDTO(&submission.Quotes[i]))
	}
	return dto
}

// ToSubmissionStatusHistoryDTO converts SubmissionStatusHistory to its DTO
func ToSubmissionStatusHistoryDTO(history *domain.SubmissionStatusHistory) domain.SubmissionStatusHistoryDTO {
	return domain.SubmissionStatusHistoryDTO{
		ID:            history.ID,
		SubmissionID:  history.SubmissionID,
		FromStatus:    history.FromStatus,
		ToStatus:      history.ToStatus,
		ChangedByID:   history.ChangedByID,
		ChangedByName: history.ChangedByName,
		Notes:         history.Notes,
		ChangedAt:     history.ChangedAt.Format(timestampFormat),
	}
}

// ToQuoteDTO converts Quote to QuoteDTO
func ToQuoteDTO(quote *domain.Quote) domain.QuoteDTO {
	dto := domain.QuoteDTO{
		ID:             quote.ID,
		SubmissionID:   quote.SubmissionID,
		InsurerPartyID: quote.InsurerPartyID,
		TotalPremium:   quote.TotalPremium,
		Currency:       quote.Currency,
		Status:         quote.Status,
		CreatedAt:      quote.CreatedAt.Format(timestampFormat),
		UpdatedAt:      quote.UpdatedAt.Format(timestampFormat),
	}
	if quote.InsurerParty != nil {
		dto.InsurerName = quote.InsurerParty.Name
	}
	if quote.ValidUntil != nil {
		valid := quote.ValidUntil.Format(dateFormat)
		dto.ValidUntil = &valid
	}
	return dto
}

// ToPolicyDTO converts Policy to PolicyDTO
func ToPolicyDTO(policy *domain.Policy) domain.PolicyDTO {
	return domain.PolicyDTO{
		ID:             policy.ID,
		PolicyNumber:   policy.PolicyNumber,
		QuoteID:        policy.QuoteID,
		Status:         policy.Status,
		EffectiveDate:  policy.EffectiveDate.Format(dateFormat),
		ExpirationDate: policy.ExpirationDate.Format(dateFormat),
		Version:        policy.Version,
		CreatedAt:      policy.CreatedAt.Format(timestampFormat),
		UpdatedAt:      policy.UpdatedAt.Format(timestampFormat),
	}
}

// ToPolicyDetailDTO converts an eager-loaded Policy to the detail projection.
// The insured party is resolved through the role registry by the caller.
func ToPolicyDetailDTO(policy *domain.Policy) domain.PolicyDetailDTO {
	detail := domain.PolicyDetailDTO{
		PolicyDTO: ToPolicyDTO(policy),
		Coverages: make([]domain.CoverageDTO, len(policy.Coverages)),
		Assets:    make([]domain.InsurableAssetDTO, len(policy.Assets)),
		Claims:    make([]domain.ClaimDTO, len(policy.Claims)),
		Insurers:  make([]domain.PolicyInsurerDTO, len(policy.Insurers)),
		Treaties:  make([]domain.TreatyDTO, len(policy.Treaties)),
	}
	for i := range policy.Coverages {
		detail.Coverages[i] = ToCoverageDTO(&policy.Coverages[i])
	}
	for i := range policy.Assets {
		detail.Assets[i] = ToInsurableAssetDTO(&policy.Assets[i])
	}
	for i := range policy.Claims {
		detail.Claims[i] = ToClaimDTO(&policy.Claims[i])
	}
	for i := range policy.Insurers {
		detail.Insurers[i] = ToPolicyInsurerDTO(&policy.Insurers[i])
	}
	for i := range policy.Treaties {
		detail.Treaties[i] = ToTreatyDTO(&policy.Treaties[i])
	}
	return detail
}

// ToCoverageDTO converts Coverage to CoverageDTO
func ToCoverageDTO(coverage *domain.Coverage) domain.CoverageDTO {
	return domain.CoverageDTO{
		ID:               coverage.ID,
		PolicyID:         coverage.PolicyID,
		CoverageType:     coverage.CoverageType,
		LimitAmount:      coverage.LimitAmount,
		DeductibleAmount: coverage.DeductibleAmount,
		CreatedAt:        coverage.CreatedAt.Format(timestampFormat),
	}
}

// ToInsurableAssetDTO converts InsurableAsset with locations and details
func ToInsurableAssetDTO(asset *domain.InsurableAsset) domain.InsurableAssetDTO {
	dto := domain.InsurableAssetDTO{
		ID:          asset.ID,
		PolicyID:    asset.PolicyID,
		AssetType:   asset.AssetType,
		Description: asset.Description,
		CreatedAt:   asset.CreatedAt.Format(timestampFormat),
	}
	for i := range asset.Locations {
		loc := &asset.Locations[i]
		dto.Locations = append(dto.Locations, domain.AssetLocationDTO{
			ID:         loc.ID,
			Address:    loc.Address,
			City:       loc.City,
			PostalCode: loc.PostalCode,
			Country:    loc.Country,
		})
	}
	for i := range asset.Details {
		detail := &asset.Details[i]
		dto.Details = append(dto.Details, domain.AssetDetailDTO{
			ID:        detail.ID,
			DetailKey: detail.DetailKey,
			Value:     detail.Value,
		})
	}
	return dto
}

// ToClaimDTO converts Claim to ClaimDTO
func ToClaimDTO(claim *domain.Claim) domain.ClaimDTO {
	return domain.ClaimDTO{
		ID:           claim.ID,
		ClaimNumber:  claim.ClaimNumber,
		PolicyID:     claim.PolicyID,
		Status:       claim.Status,
		DateOfLoss:   claim.DateOfLoss.Format(dateFormat),
		ReportedDate: claim.ReportedDate.Format(dateFormat),
		ReportedByID: claim.ReportedByID,
		Description:  claim.Description,
		CreatedAt:    claim.CreatedAt.Format(timestampFormat),
		UpdatedAt:    claim.UpdatedAt.Format(timestampFormat),
	}
}

// ToClaimDetailDTO converts an eager-loaded Claim plus its ledger totals to
// the claim-with-financials projection
func ToClaimDetailDTO(claim *domain.Claim, incurred, reserved, paid float64) domain.ClaimDetailDTO {
	detail := domain.ClaimDetailDTO{
		ClaimDTO:      ToClaimDTO(claim),
		LogEntries:    make([]domain.ClaimLogEntryDTO, len(claim.LogEntries)),
		Transactions:  make([]domain.FinancialTransactionDTO, len(claim.Transactions)),
		Subrogations:  make([]domain.SubrogationDTO, len(claim.Subrogations)),
		TotalIncurred: incurred,
		TotalReserved: reserved,
		TotalPaid:     paid,
	}
	if claim.Policy != nil {
		detail.PolicyNumber = claim.Policy.PolicyNumber
	}
	for i := range claim.LogEntries {
		detail.LogEntries[i] = ToClaimLogEntryDTO(&claim.LogEntries[i])
	}
	for i := range claim.Transactions {
		detail.Transactions[i] = ToFinancialTransactionDTO(&claim.Transactions[i])
	}
	for i := range claim.Subrogations {
		detail.Subrogations[i] = ToSubrogationDTO(&claim.Subrogations[i])
	}
	return detail
}

// ToClaimLogEntryDTO converts ClaimLogEntry to ClaimLogEntryDTO
func ToClaimLogEntryDTO(entry *domain.ClaimLogEntry) domain.ClaimLogEntryDTO {
	return domain.ClaimLogEntryDTO{
		ID:       entry.ID,
		ClaimID:  entry.ClaimID,
		Entry:    entry.Entry,
		AuthorID: entry.AuthorID,
		LoggedAt: entry.LoggedAt.Format(timestampFormat),
	}
}

// ToFinancialTransactionDTO converts FinancialTransaction to its DTO
func ToFinancialTransactionDTO(tx *domain.FinancialTransaction) domain.FinancialTransactionDTO {
	return domain.FinancialTransactionDTO{
		ID:              tx.ID,
		ClaimID:         tx.ClaimID,
		TransactionType: tx.TransactionType,
		Amount:          tx.Amount,
		Currency:        tx.Currency,
		TransactionDate: tx.TransactionDate.Format(dateFormat),
		Description:     tx.Description,
		CreatedAt:       tx.CreatedAt.Format(timestampFormat),
	}
}

// ToSubrogationDTO converts Subrogation to SubrogationDTO
func ToSubrogationDTO(subrogation *domain.Subrogation) domain.SubrogationDTO {
	dto := domain.SubrogationDTO{
		ID:                      subrogation.ID,
		ClaimID:                 subrogation.ClaimID,
		LiablePartyID:           subrogation.LiablePartyID,
		Status:                  subrogation.Status,
		PotentialRecoveryAmount: subrogation.PotentialRecoveryAmount,
		ActualRecoveryAmount:    subrogation.ActualRecoveryAmount,
		Notes:                   subrogation.Notes,
		CreatedAt:               subrogation.CreatedAt.Format(timestampFormat),
		UpdatedAt:               subrogation.UpdatedAt.Format(timestampFormat),
	}
	if subrogation.LiableParty != nil {
		dto.LiablePartyName = subrogation.LiableParty.Name
	}
	return dto
}

// ToPolicyInsurerDTO converts PolicyInsurer to PolicyInsurerDTO
func ToPolicyInsurerDTO(insurer *domain.PolicyInsurer) domain.PolicyInsurerDTO {
	dto := domain.PolicyInsurerDTO{
		ID:              insurer.ID,
		PolicyID:        insurer.PolicyID,
		InsurerPartyID:  insurer.InsurerPartyID,
		SharePercentage: insurer.SharePercentage,
		IsLead:          insurer.IsLead,
		CreatedAt:       insurer.CreatedAt.Format(timestampFormat),
	}
	if insurer.InsurerParty != nil {
		dto.InsurerName = insurer.InsurerParty.Name
	}
	return dto
}

// ToTreatyDTO converts ReinsuranceTreaty to TreatyDTO including loaded layers
func ToTreatyDTO(treaty *domain.ReinsuranceTreaty) domain.TreatyDTO {
	dto := domain.TreatyDTO{
		ID:         treaty.ID,
		PolicyID:   treaty.PolicyID,
		TreatyName: treaty.TreatyName,
		TreatyType: treaty.TreatyType,
		CreatedAt:  treaty.CreatedAt.Format(timestampFormat),
	}
	for i := range treaty.Layers {
		dto.Layers = append(dto.Layers, ToLayerDTO(&treaty.Layers[i]))
	}
	return dto
}

// ToLayerDTO converts ReinsuranceLayer to LayerDTO including participants
func ToLayerDTO(layer *domain.ReinsuranceLayer) domain.LayerDTO {
	dto := domain.LayerDTO{
		ID:              layer.ID,
		TreatyID:        layer.TreatyID,
		LayerOrder:      layer.LayerOrder,
		AttachmentPoint: layer.AttachmentPoint,
		LayerLimit:      layer.LayerLimit,
		Premium:         layer.Premium,
		Participants:    make([]domain.LayerParticipantDTO, len(layer.Participants)),
		CreatedAt:       layer.CreatedAt.Format(timestampFormat),
	}
	for i := range layer.Participants {
		dto.Participants[i] = ToLayerParticipantDTO(&layer.Participants[i])
	}
	return dto
}

// ToLayerParticipantDTO converts LayerParticipant to LayerParticipantDTO
func ToLayerParticipantDTO(participant *domain.LayerParticipant) domain.LayerParticipantDTO {
	dto := domain.LayerParticipantDTO{
		ID:               participant.ID,
		LayerID:          participant.LayerID,
		ReinsurerPartyID: participant.ReinsurerPartyID,
		SharePercentage:  participant.SharePercentage,
		Status:           participant.Status,
		CreatedAt:        participant.CreatedAt.Format(timestampFormat),
	}
	if participant.ReinsurerParty != nil {
		dto.ReinsurerName = participant.ReinsurerParty.Name
	}
	return dto
}

// ToCashCallDTO converts CashCall to CashCallDTO
func ToCashCallDTO(call *domain.CashCall) domain.CashCallDTO {
	dto := domain.CashCallDTO{
		ID:            call.ID,
		CallNumber:    call.CallNumber,
		ClaimID:       call.ClaimID,
		ParticipantID: call.ParticipantID,
		CallAmount:    call.CallAmount,
		Currency:      call.Currency,
		Status:        call.Status,
		IssuedDate:    call.IssuedDate.Format(dateFormat),
		DueDate:       call.DueDate.Format(dateFormat),
		CreatedAt:     call.CreatedAt.Format(timestampFormat),
	}
	if call.PaidDate != nil {
		paid := call.PaidDate.Format(dateFormat)
		dto.PaidDate = &paid
	}
	if call.Participant != nil && call.Participant.ReinsurerParty != nil {
		dto.ReinsurerName = call.Participant.ReinsurerParty.Name
	}
	return dto
}

// ToDocumentDTO converts Document to DocumentDTO
func ToDocumentDTO(document *domain.Document) domain.DocumentDTO {
	return domain.DocumentDTO{
		ID:              document.ID,
		DocumentName:    document.DocumentName,
		ContentType:     document.ContentType,
		Size:            document.Size,
		RecordKind:      document.RecordKind,
		RecordID:        document.RecordID,
		UploaderPartyID: document.UploaderPartyID,
		CreatedAt:       document.CreatedAt.Format(timestampFormat),
	}
}
