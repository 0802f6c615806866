package service

import (
	"testing"

	"github.com/lucerne-re/policy-api/internal/repository"
	"github.com/lucerne-re/policy-api/internal/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// testServices bundles the service graph wired against one test database
type testServices struct {
	db          *gorm.DB
	party       *PartyService
	role        *RoleService
	submission  *SubmissionService
	policy      *PolicyService
	claim       *ClaimService
	subrogation *SubrogationService
	coinsurance *CoinsuranceService
	reinsurance *ReinsuranceService
	cashCall    *CashCallService
	report      *ReportService
}

func newTestServices(t *testing.T) *testServices {
	t.Helper()

	db := testutil.SetupTestDB(t)
	log := zap.NewNop()

	partyRepo := repository.NewPartyRepository(db)
	roleRepo := repository.NewPartyRoleRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)
	policyRepo := repository.NewPolicyRepository(db)
	assetRepo := repository.NewAssetRepository(db)
	claimRepo := repository.NewClaimRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	subrogationRepo := repository.NewSubrogationRepository(db)
	coinsuranceRepo := repository.NewCoinsuranceRepository(db)
	reinsuranceRepo := repository.NewReinsuranceRepository(db)
	cashCallRepo := repository.NewCashCallRepository(db)
	numberSeqRepo := repository.NewNumberSequenceRepository(db)

	numberSeq := NewNumberSequenceService(numberSeqRepo, log)
	role := NewRoleService(roleRepo, partyRepo, log, db)

	return &testServices{
		db:          db,
		party:       NewPartyService(partyRepo, roleRepo, log, db),
		role:        role,
		submission:  NewSubmissionService(submissionRepo, quoteRepo, partyRepo, roleRepo, numberSeq, log, db),
		policy:      NewPolicyService(policyRepo, assetRepo, submissionRepo, quoteRepo, roleRepo, numberSeq, log, db),
		claim:       NewClaimService(claimRepo, transactionRepo, policyRepo, partyRepo, numberSeq, log, db),
		subrogation: NewSubrogationService(subrogationRepo, claimRepo, partyRepo, roleRepo, log, db),
		coinsurance: NewCoinsuranceService(coinsuranceRepo, policyRepo, partyRepo, roleRepo, log, db),
		reinsurance: NewReinsuranceService(reinsuranceRepo, policyRepo, partyRepo, roleRepo, log, db),
		cashCall:    NewCashCallService(cashCallRepo, claimRepo, transactionRepo, reinsuranceRepo, numberSeq, log, db),
		report:      NewReportService(policyRepo, claimRepo, cashCallRepo, role, log, db),
	}
}
