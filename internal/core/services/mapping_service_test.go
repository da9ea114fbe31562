package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/ledger_mapping_app/internal/apperrors"
	"github.com/SscSPs/ledger_mapping_app/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_mapping_app/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_mapping_app/internal/core/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock MappingRepository ---
type MockMappingRepository struct {
	mock.Mock
}

func (m *MockMappingRepository) SaveMappingBatch(ctx context.Context, workplaceID string, records []domain.MappingRecord) ([]domain.SaveItemResult, error) {
	args := m.Called(ctx, workplaceID, records)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SaveItemResult), args.Error(1)
}

var _ portsrepo.MappingWriter = (*MockMappingRepository)(nil)

func testCatalog() *domain.StandardCatalog {
	return domain.NewStandardCatalog([]domain.StandardTarget{
		{ID: "T1", Value: "4000", Label: "Revenue"},
		{ID: "T2", Value: "5000", Label: "Cost of Sales"},
		{ID: "T3", Value: "6000", Label: "Operating Expenses"},
		{ID: "EXC", Value: "9999", Label: "Excluded"},
	})
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// --- Test Suite ---
type MappingEngineTestSuite struct {
	suite.Suite
	ctx      context.Context
	mockRepo *MockMappingRepository
	engine   *services.MappingEngine
	rows     []domain.MappingRow
}

func (suite *MappingEngineTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.mockRepo = new(MockMappingRepository)
	suite.engine = services.NewMappingEngine("wp-1", suite.mockRepo,
		services.WithCatalog(testCatalog()),
		services.WithClock(func() time.Time { return time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC) }),
	)

	rows, err := suite.engine.LoadImportedAccounts(suite.ctx, []domain.ImportRow{
		{EntityID: "E1", AccountID: "1000", Description: "Sales", NetChange: dec("-120000"), GLMonth: "2024-01", SuggestedTargetID: "T1"},
		{EntityID: "E1", AccountID: "2000", Description: "Rent", NetChange: dec("5000"), GLMonth: "2024-01"},
		{AccountID: "3000", Description: "Suspense", NetChange: dec("0"), GLMonth: "2024-01"},
	})
	suite.Require().NoError(err)
	suite.Require().Len(rows, 3)
	suite.rows = rows
}

func (suite *MappingEngineTestSuite) stateOf(rowID string) domain.RowSaveStatus {
	for _, st := range suite.engine.RowStates() {
		if st.RowID == rowID {
			return st
		}
	}
	suite.FailNow("row state not found", rowID)
	return domain.RowSaveStatus{}
}

// --- Import & derivation ---

func (suite *MappingEngineTestSuite) TestLoadImportedAccounts_Defaults() {
	sales, rent, suspense := suite.rows[0], suite.rows[1], suite.rows[2]

	suite.Equal(domain.MappingDirect, sales.MappingType)
	suite.Equal(domain.StatusUnmapped, sales.Status)
	suite.Equal(domain.PolarityCredit, sales.Polarity)
	suite.Equal(domain.PolarityDebit, rent.Polarity)
	suite.IsType(domain.NoExclusion{}, sales.Exclusion)
	suite.False(sales.RequiresEntityAssignment)
	suite.True(suspense.RequiresEntityAssignment)

	for _, st := range suite.engine.RowStates() {
		suite.False(st.Dirty, "imported rows start clean")
		suite.Equal(domain.SaveIdle, st.State)
	}
}

func (suite *MappingEngineTestSuite) TestLoadImportedAccounts_MissingAccount() {
	_, err := suite.engine.LoadImportedAccounts(suite.ctx, []domain.ImportRow{{GLMonth: "2024-01"}})
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Len(suite.engine.Rows(domain.RowFilter{}), 3, "a rejected import keeps the previous rows")
}

func (suite *MappingEngineTestSuite) TestUpdateTarget_DerivesStatus() {
	rowID := suite.rows[1].ID

	row, err := suite.engine.UpdateTarget(suite.ctx, rowID, "T2")
	suite.Require().NoError(err)
	suite.Equal(domain.StatusMapped, row.Status)

	row, err = suite.engine.UpdateTarget(suite.ctx, rowID, "NOT-IN-CATALOG")
	suite.Require().NoError(err)
	suite.Equal(domain.StatusNew, row.Status)

	row, err = suite.engine.UpdateTarget(suite.ctx, rowID, "")
	suite.Require().NoError(err)
	suite.Equal(domain.StatusUnmapped, row.Status)
	suite.True(suite.stateOf(rowID).Dirty)
}

func (suite *MappingEngineTestSuite) TestUpdateTarget_UnknownRow() {
	_, err := suite.engine.UpdateTarget(suite.ctx, "missing", "T1")
	suite.ErrorIs(err, services.ErrRowNotFound)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *MappingEngineTestSuite) TestExcludeType_IsSticky() {
	rowID := suite.rows[1].ID

	row, err := suite.engine.UpdateMappingType(suite.ctx, rowID, domain.MappingExclude)
	suite.Require().NoError(err)
	suite.Equal(domain.StatusExcluded, row.Status)

	_, err = suite.engine.UpdateStatus(suite.ctx, rowID, domain.StatusMapped)
	suite.ErrorIs(err, apperrors.ErrValidation)

	row, err = suite.engine.UpdateMappingType(suite.ctx, rowID, domain.MappingDirect)
	suite.Require().NoError(err)
	suite.Equal(domain.StatusUnmapped, row.Status, "leaving exclude re-derives the status")
}

func (suite *MappingEngineTestSuite) TestUpdateStatus_ExcludedOnDirectRow() {
	rowID := suite.rows[1].ID

	row, err := suite.engine.UpdateStatus(suite.ctx, rowID, domain.StatusExcluded)
	suite.Require().NoError(err)
	suite.Equal(domain.StatusExcluded, row.Status)
	suite.True(dec("5000").Equal(domain.ResolveExcludedAmount(row)))

	_, err = suite.engine.UpdateStatus(suite.ctx, rowID, "Bogus")
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *MappingEngineTestSuite) TestUpdateMappingType_SeedsSplitFromTarget() {
	rowID := suite.rows[1].ID
	_, err := suite.engine.UpdateTarget(suite.ctx, rowID, "T2")
	suite.Require().NoError(err)

	row, err := suite.engine.UpdateMappingType(suite.ctx, rowID, domain.MappingPercentage)
	suite.Require().NoError(err)
	suite.Require().Len(row.SplitDefinitions, 1)
	suite.Equal("T2", row.SplitDefinitions[0].TargetID)
	suite.Equal("Cost of Sales", row.SplitDefinitions[0].TargetName)
	suite.True(dec("100").Equal(row.SplitDefinitions[0].AllocationValue))
	suite.Equal(domain.StatusMapped, row.Status)
}

// --- Splits ---

func (suite *MappingEngineTestSuite) TestExclusionSplit_CountsTowardsHundred() {
	rowID := suite.rows[0].ID
	_, err := suite.engine.UpdateMappingType(suite.ctx, rowID, domain.MappingPercentage)
	suite.Require().NoError(err)

	row, err := suite.engine.AddSplit(suite.ctx, rowID, domain.SplitDefinition{TargetID: "T1", AllocationValue: dec("60")})
	suite.Require().NoError(err)
	suite.Equal(domain.StatusUnmapped, row.Status)

	row, err = suite.engine.AddSplit(suite.ctx, rowID, domain.SplitDefinition{TargetID: "EXC", AllocationValue: dec("40"), IsExclusion: true})
	suite.Require().NoError(err)
	suite.Equal(domain.StatusMapped, row.Status)
	suite.Require().Len(row.SplitDefinitions, 2)
	suite.NotEmpty(row.SplitDefinitions[0].ID)
	suite.Equal(domain.AllocationPercentage, row.SplitDefinitions[0].AllocationType)

	// a credit balance excludes a negative amount
	suite.True(dec("-48000").Equal(domain.ResolveExcludedAmount(row)), domain.ResolveExcludedAmount(row).String())

	summary := suite.engine.Summary(domain.RowFilter{EntityIDs: []string{"E1"}, ActivePeriod: "2024-01", Search: "sales"})
	suite.Equal(1, summary.TotalAccounts)
	suite.True(dec("-48000").Equal(summary.ExcludedTotal))
	suite.True(dec("-72000").Equal(summary.NetTotal))
}

func (suite *MappingEngineTestSuite) TestUpdateSplit_RebalancesOthers() {
	rowID := suite.rows[1].ID
	_, err := suite.engine.UpdateMappingType(suite.ctx, rowID, domain.MappingPercentage)
	suite.Require().NoError(err)
	for _, s := range []domain.SplitDefinition{
		{ID: "s1", TargetID: "T1", AllocationValue: dec("50")},
		{ID: "s2", TargetID: "T2", AllocationValue: dec("30")},
		{ID: "s3", TargetID: "T3", AllocationValue: dec("20")},
	} {
		_, err = suite.engine.AddSplit(suite.ctx, rowID, s)
		suite.Require().NoError(err)
	}

	seventy := dec("70")
	row, err := suite.engine.UpdateSplit(suite.ctx, rowID, "s1", domain.SplitPatch{AllocationValue: &seventy})
	suite.Require().NoError(err)

	want := []string{"70", "18", "12"}
	suite.Require().Len(row.SplitDefinitions, 3)
	for i, s := range row.SplitDefinitions {
		suite.True(dec(want[i]).Equal(s.AllocationValue), "split %s = %s", s.ID, s.AllocationValue)
	}
	suite.Equal(domain.StatusMapped, row.Status)
}

func (suite *MappingEngineTestSuite) TestSplitEdits_Errors() {
	rowID := suite.rows[1].ID

	_, err := suite.engine.AddSplit(suite.ctx, rowID, domain.SplitDefinition{TargetID: "T1", AllocationValue: dec("100")})
	suite.ErrorIs(err, apperrors.ErrValidation, "splits need a percentage row")

	_, err = suite.engine.UpdateMappingType(suite.ctx, rowID, domain.MappingPercentage)
	suite.Require().NoError(err)

	_, err = suite.engine.UpdateSplit(suite.ctx, rowID, "nope", domain.SplitPatch{})
	suite.ErrorIs(err, services.ErrSplitNotFound)

	_, err = suite.engine.RemoveSplit(suite.ctx, rowID, "nope")
	suite.ErrorIs(err, apperrors.ErrNotFound)

	row, err := suite.engine.AddSplit(suite.ctx, rowID, domain.SplitDefinition{ID: "s1", TargetID: "T1", AllocationValue: dec("250")})
	suite.Require().NoError(err)
	suite.True(dec("100").Equal(row.SplitDefinitions[0].AllocationValue), "percentages clamp to 100")

	row, err = suite.engine.RemoveSplit(suite.ctx, rowID, "s1")
	suite.Require().NoError(err)
	suite.Empty(row.SplitDefinitions)
	suite.Equal(domain.StatusUnmapped, row.Status)
}

// --- Exclusions ---

func (suite *MappingEngineTestSuite) TestUpdateExclusion_ClampsAgainstBalance() {
	rowID := suite.rows[1].ID

	row, err := suite.engine.UpdateExclusion(suite.ctx, rowID, domain.AmountExclusion{Amount: dec("9000")})
	suite.Require().NoError(err)
	suite.True(dec("5000").Equal(row.Exclusion.(domain.AmountExclusion).Amount))

	row, err = suite.engine.UpdateExclusion(suite.ctx, rowID, domain.PercentageExclusion{Percent: dec("25")})
	suite.Require().NoError(err)
	suite.True(dec("1250").Equal(domain.ResolveExcludedAmount(row)))

	row, err = suite.engine.UpdateExclusion(suite.ctx, rowID, nil)
	suite.Require().NoError(err)
	suite.IsType(domain.NoExclusion{}, row.Exclusion)
}

// --- Multi-row edits ---

func (suite *MappingEngineTestSuite) TestApplyBatchMapping_AllOrNothing() {
	notes := "reviewed"
	_, err := suite.engine.ApplyBatchMapping(suite.ctx, []string{suite.rows[0].ID, "missing"}, domain.MappingPatch{Notes: &notes})
	suite.ErrorIs(err, apperrors.ErrNotFound)

	row, err := suite.engine.Row(suite.rows[0].ID)
	suite.Require().NoError(err)
	suite.Empty(row.Notes)
	suite.False(suite.stateOf(row.ID).Dirty)

	target := "T3"
	rows, err := suite.engine.ApplyBatchMapping(suite.ctx, []string{suite.rows[0].ID, suite.rows[1].ID}, domain.MappingPatch{TargetID: &target, Notes: &notes})
	suite.Require().NoError(err)
	suite.Require().Len(rows, 2)
	for _, r := range rows {
		suite.Equal("T3", r.ManualTargetID)
		suite.Equal(domain.StatusMapped, r.Status)
		suite.Equal("reviewed", r.Notes)
	}
}

func (suite *MappingEngineTestSuite) TestApplyPresetToAccounts() {
	preset := domain.MappingPreset{ID: "p1", Name: "Half/half", Splits: []domain.SplitDefinition{
		{ID: "x", TargetID: "T1", AllocationValue: dec("50")},
		{ID: "y", TargetID: "T2", AllocationValue: dec("50")},
	}}
	rows, err := suite.engine.ApplyPresetToAccounts(suite.ctx, []string{suite.rows[0].ID, suite.rows[1].ID}, preset)
	suite.Require().NoError(err)
	suite.Require().Len(rows, 2)

	suite.NotEqual(rows[0].SplitDefinitions[0].ID, rows[1].SplitDefinitions[0].ID, "each row gets its own split ids")
	for _, r := range rows {
		suite.Equal(domain.MappingPercentage, r.MappingType)
		suite.Equal(domain.StatusMapped, r.Status)
		suite.Equal("Revenue", r.SplitDefinitions[0].TargetName)
	}

	_, err = suite.engine.ApplyPresetToAccounts(suite.ctx, []string{suite.rows[0].ID}, domain.MappingPreset{ID: "empty"})
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *MappingEngineTestSuite) TestBulkAccept_OnlySuggestedRowsChange() {
	rows, err := suite.engine.BulkAccept(suite.ctx, nil)
	suite.Require().NoError(err)
	suite.Require().Len(rows, 3)

	suite.Equal("T1", rows[0].ManualTargetID)
	suite.Equal(domain.StatusMapped, rows[0].Status)
	suite.True(suite.stateOf(rows[0].ID).Dirty)
	suite.False(suite.stateOf(rows[1].ID).Dirty)
	suite.False(suite.stateOf(rows[2].ID).Dirty)
}

// --- Filtering ---

func (suite *MappingEngineTestSuite) TestRows_AllPeriodsCollapse() {
	_, err := suite.engine.LoadImportedAccounts(suite.ctx, []domain.ImportRow{
		{EntityID: "E1", AccountID: "1000", NetChange: dec("150"), GLMonth: "2024-01"},
		{EntityID: "E1", AccountID: "1000", NetChange: dec("0"), GLMonth: "2024-02"},
		{EntityID: "E2", AccountID: "1000", NetChange: dec("0"), GLMonth: "2024-01"},
		{EntityID: "E2", AccountID: "1000", NetChange: dec("0"), GLMonth: "2024-02"},
	})
	suite.Require().NoError(err)

	rows := suite.engine.Rows(domain.RowFilter{})
	suite.Require().Len(rows, 2)
	suite.Equal("2024-01", rows[0].GLMonth, "latest non-zero month wins")
	suite.Equal("2024-02", rows[1].GLMonth, "all zero keeps the latest month")

	feb := suite.engine.Rows(domain.RowFilter{ActivePeriod: "2024-02"})
	suite.Len(feb, 2)
}

func (suite *MappingEngineTestSuite) TestRows_StatusAndSearchFilters() {
	_, err := suite.engine.UpdateTarget(suite.ctx, suite.rows[1].ID, "T2")
	suite.Require().NoError(err)

	mapped := suite.engine.Rows(domain.RowFilter{Statuses: []domain.MappingStatus{domain.StatusMapped}})
	suite.Require().Len(mapped, 1)
	suite.Equal("2000", mapped[0].AccountID)

	suite.Len(suite.engine.Rows(domain.RowFilter{Search: "SUSP"}), 1)

	summary := suite.engine.Summary(domain.RowFilter{})
	suite.Equal(3, summary.TotalAccounts)
	suite.Equal(2, summary.MappedAccounts, "a suggestion counts as mapped")
	suite.True(dec("-115000").Equal(summary.GrossTotal))
}

// --- Save ---

func (suite *MappingEngineTestSuite) TestSaveMappings_NothingDirty() {
	outcome, err := suite.engine.SaveMappings(suite.ctx, nil)

	suite.Require().NoError(err)
	suite.Require().NotNil(outcome)
	suite.Equal(0, outcome.Saved)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveMappingBatch", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *MappingEngineTestSuite) TestSaveMappings_OnlyDirtyRow() {
	rowID := suite.rows[1].ID
	_, err := suite.engine.UpdateNotes(suite.ctx, rowID, "check lease")
	suite.Require().NoError(err)

	suite.mockRepo.On("SaveMappingBatch", mock.Anything, "wp-1", mock.MatchedBy(func(records []domain.MappingRecord) bool {
		return len(records) == 1 && records[0].RowID == rowID && records[0].Notes == "check lease"
	})).Return([]domain.SaveItemResult{{RowID: rowID, Success: true}}, nil).Once()

	outcome, err := suite.engine.SaveMappings(suite.ctx, nil)
	suite.Require().NoError(err)
	suite.Equal(1, outcome.Saved)
	suite.Equal(0, outcome.Failed)
	suite.False(suite.stateOf(rowID).Dirty)
	suite.Equal(domain.SaveIdle, suite.stateOf(rowID).State)

	outcome, err = suite.engine.SaveMappings(suite.ctx, nil)
	suite.Require().NoError(err)
	suite.Equal(0, outcome.Saved)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *MappingEngineTestSuite) TestSaveMappings_InvalidPercentageRowBlocksSave() {
	rowID := suite.rows[1].ID
	_, err := suite.engine.UpdateMappingType(suite.ctx, rowID, domain.MappingPercentage)
	suite.Require().NoError(err)
	_, err = suite.engine.UpdateNotes(suite.ctx, suite.rows[0].ID, "fine")
	suite.Require().NoError(err)

	outcome, err := suite.engine.SaveMappings(suite.ctx, nil)
	suite.Nil(outcome)
	suite.ErrorIs(err, services.ErrInvalidMappings)
	suite.ErrorIs(err, apperrors.ErrValidation)

	var validationErr *services.ValidationError
	suite.Require().True(errors.As(err, &validationErr))
	suite.Require().Len(validationErr.Issues, 1)
	suite.Equal(rowID, validationErr.Issues[0].RowID)
	suite.Equal("no split definitions", validationErr.Issues[0].Message)

	suite.mockRepo.AssertNotCalled(suite.T(), "SaveMappingBatch", mock.Anything, mock.Anything, mock.Anything)
	suite.True(suite.stateOf(suite.rows[0].ID).Dirty)
}

func (suite *MappingEngineTestSuite) TestSaveMappings_BatchFailureKeepsRowsDirty() {
	rowID := suite.rows[1].ID
	_, err := suite.engine.UpdateNotes(suite.ctx, rowID, "x")
	suite.Require().NoError(err)

	suite.mockRepo.On("SaveMappingBatch", mock.Anything, "wp-1", mock.Anything).Return(nil, assert.AnError).Once()

	outcome, err := suite.engine.SaveMappings(suite.ctx, nil)
	suite.Nil(outcome)
	suite.ErrorIs(err, assert.AnError)

	st := suite.stateOf(rowID)
	suite.True(st.Dirty)
	suite.Equal(domain.SaveError, st.State)
	suite.NotEmpty(st.Message)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *MappingEngineTestSuite) TestSaveMappings_ItemFailure() {
	ok, bad := suite.rows[0].ID, suite.rows[1].ID
	_, err := suite.engine.UpdateNotes(suite.ctx, ok, "a")
	suite.Require().NoError(err)
	_, err = suite.engine.UpdateNotes(suite.ctx, bad, "b")
	suite.Require().NoError(err)

	suite.mockRepo.On("SaveMappingBatch", mock.Anything, "wp-1", mock.Anything).Return([]domain.SaveItemResult{
		{RowID: ok, Success: true},
		{RowID: bad, Success: false, Message: "constraint violation"},
	}, nil).Once()

	outcome, err := suite.engine.SaveMappings(suite.ctx, nil)
	suite.Require().NoError(err)
	suite.Equal(1, outcome.Saved)
	suite.Equal(1, outcome.Failed)

	suite.False(suite.stateOf(ok).Dirty)
	st := suite.stateOf(bad)
	suite.True(st.Dirty)
	suite.Equal(domain.SaveError, st.State)
	suite.Equal("constraint violation", st.Message)
}

func (suite *MappingEngineTestSuite) TestSaveMappings_EditDuringSaveStaysDirty() {
	rowID := suite.rows[1].ID
	_, err := suite.engine.UpdateNotes(suite.ctx, rowID, "first")
	suite.Require().NoError(err)

	suite.mockRepo.On("SaveMappingBatch", mock.Anything, "wp-1", mock.Anything).
		Run(func(args mock.Arguments) {
			_, editErr := suite.engine.UpdateNotes(suite.ctx, rowID, "second")
			suite.NoError(editErr)
		}).
		Return([]domain.SaveItemResult{{RowID: rowID, Success: true}}, nil).Once()

	outcome, err := suite.engine.SaveMappings(suite.ctx, nil)
	suite.Require().NoError(err)
	suite.Equal(1, outcome.Saved)
	suite.True(suite.stateOf(rowID).Dirty, "edit made while saving is kept for the next save")

	row, err := suite.engine.Row(rowID)
	suite.Require().NoError(err)
	suite.Equal("second", row.Notes)
}

func (suite *MappingEngineTestSuite) TestSaveMappings_RejectsConcurrentSave() {
	rowID := suite.rows[1].ID
	_, err := suite.engine.UpdateNotes(suite.ctx, rowID, "x")
	suite.Require().NoError(err)

	started := make(chan struct{})
	release := make(chan struct{})
	suite.mockRepo.On("SaveMappingBatch", mock.Anything, "wp-1", mock.Anything).
		Run(func(args mock.Arguments) {
			close(started)
			<-release
		}).
		Return([]domain.SaveItemResult{{RowID: rowID, Success: true}}, nil).Once()

	done := make(chan error, 1)
	go func() {
		_, saveErr := suite.engine.SaveMappings(suite.ctx, nil)
		done <- saveErr
	}()
	<-started

	suite.Equal(domain.SaveSaving, suite.stateOf(rowID).State)
	_, err = suite.engine.SaveMappings(suite.ctx, nil)
	suite.ErrorIs(err, services.ErrSaveInProgress)
	suite.ErrorIs(err, apperrors.ErrConflict)

	close(release)
	suite.NoError(<-done)
	suite.False(suite.stateOf(rowID).Dirty)
}

func (suite *MappingEngineTestSuite) TestSaveMappings_LargeBatchWarns() {
	engine := services.NewMappingEngine("wp-1", suite.mockRepo, services.WithSaveThresholds(1, 5))
	rows, err := engine.LoadImportedAccounts(suite.ctx, []domain.ImportRow{
		{AccountID: "1", GLMonth: "2024-01"},
		{AccountID: "2", GLMonth: "2024-01"},
	})
	suite.Require().NoError(err)
	for _, r := range rows {
		_, err = engine.UpdateNotes(suite.ctx, r.ID, "n")
		suite.Require().NoError(err)
	}

	suite.mockRepo.On("SaveMappingBatch", mock.Anything, "wp-1", mock.Anything).Return([]domain.SaveItemResult{
		{RowID: rows[0].ID, Success: true},
		{RowID: rows[1].ID, Success: true},
	}, nil).Once()

	outcome, err := engine.SaveMappings(suite.ctx, nil)
	suite.Require().NoError(err)
	suite.Equal(2, outcome.Saved)
	suite.NotEmpty(outcome.Warning)
}

func (suite *MappingEngineTestSuite) TestSaveMappings_NoRepository() {
	engine := services.NewMappingEngine("wp-1", nil)
	_, err := engine.SaveMappings(suite.ctx, nil)
	suite.ErrorIs(err, apperrors.ErrInternal)
}

// --- Finalize ---

func (suite *MappingEngineTestSuite) TestFinalizeMappings_ResolvesLines() {
	sales, rent, suspense := suite.rows[0].ID, suite.rows[1].ID, suite.rows[2].ID
	_, err := suite.engine.UpdateTarget(suite.ctx, rent, "T3")
	suite.Require().NoError(err)
	_, err = suite.engine.UpdateExclusion(suite.ctx, rent, domain.AmountExclusion{Amount: dec("1000")})
	suite.Require().NoError(err)
	_, err = suite.engine.UpdateMappingType(suite.ctx, suspense, domain.MappingExclude)
	suite.Require().NoError(err)

	valid, resolved, issues := suite.engine.FinalizeMappings(suite.ctx, []string{sales, rent, suspense, "unknown"})
	suite.Require().True(valid)
	suite.Empty(issues)
	suite.Require().Len(resolved, 3)

	// a suggestion is not a target until accepted
	suite.Equal(domain.StatusUnmapped, resolved[0].Status)
	suite.Empty(resolved[0].Lines)

	suite.Require().Len(resolved[1].Lines, 2)
	suite.Equal("T3", resolved[1].Lines[0].TargetID)
	suite.True(dec("4000").Equal(resolved[1].Lines[0].Amount))
	suite.True(resolved[1].Lines[1].IsExclusion)
	suite.True(dec("1000").Equal(resolved[1].Lines[1].Amount))

	suite.Require().Len(resolved[2].Lines, 1)
	suite.True(resolved[2].Lines[0].IsExclusion)
}

func (suite *MappingEngineTestSuite) TestFinalizeMappings_SuggestionNeedsAccept() {
	sales := suite.rows[0].ID
	_, err := suite.engine.UpdateExclusion(suite.ctx, sales, domain.PercentageExclusion{Percent: dec("25")})
	suite.Require().NoError(err)

	_, resolved, _ := suite.engine.FinalizeMappings(suite.ctx, []string{sales})
	suite.Require().Len(resolved, 1)
	suite.Require().Len(resolved[0].Lines, 1, "only the exclusion line")
	suite.True(resolved[0].Lines[0].IsExclusion)
	suite.True(dec("-30000").Equal(resolved[0].Lines[0].Amount))

	_, err = suite.engine.BulkAccept(suite.ctx, []string{sales})
	suite.Require().NoError(err)
	_, resolved, _ = suite.engine.FinalizeMappings(suite.ctx, []string{sales})
	suite.Require().Len(resolved[0].Lines, 2)
	suite.Equal("T1", resolved[0].Lines[0].TargetID)
	suite.Equal("Revenue", resolved[0].Lines[0].TargetName)
	suite.True(dec("-90000").Equal(resolved[0].Lines[0].Amount))
}

func (suite *MappingEngineTestSuite) TestFinalizeMappings_InvalidSplits() {
	rowID := suite.rows[1].ID
	_, err := suite.engine.UpdateMappingType(suite.ctx, rowID, domain.MappingPercentage)
	suite.Require().NoError(err)
	_, err = suite.engine.AddSplit(suite.ctx, rowID, domain.SplitDefinition{TargetID: "T1", AllocationValue: dec("90")})
	suite.Require().NoError(err)

	valid, resolved, issues := suite.engine.FinalizeMappings(suite.ctx, nil)
	suite.False(valid)
	suite.Nil(resolved)
	suite.Require().Len(issues, 1)
	suite.Equal(rowID, issues[0].RowID)
	suite.Contains(issues[0].Message, "90.00%")
}

func (suite *MappingEngineTestSuite) TestRefreshCatalog_MarksChangedRowsDirty() {
	_, err := suite.engine.UpdateTarget(suite.ctx, suite.rows[1].ID, "T9")
	suite.Require().NoError(err)
	suite.mockRepo.On("SaveMappingBatch", mock.Anything, "wp-1", mock.Anything).
		Return([]domain.SaveItemResult{{RowID: suite.rows[1].ID, Success: true}}, nil).Once()
	_, err = suite.engine.SaveMappings(suite.ctx, nil)
	suite.Require().NoError(err)

	suite.engine.RefreshCatalog(suite.ctx, domain.NewStandardCatalog([]domain.StandardTarget{{ID: "T9", Label: "New target"}}))

	row, err := suite.engine.Row(suite.rows[1].ID)
	suite.Require().NoError(err)
	suite.Equal(domain.StatusMapped, row.Status)
	suite.True(suite.stateOf(row.ID).Dirty)
	suite.False(suite.stateOf(suite.rows[0].ID).Dirty)
}

func (suite *MappingEngineTestSuite) TestClearWorkspace() {
	suite.engine.ClearWorkspace(suite.ctx)
	suite.Empty(suite.engine.Rows(domain.RowFilter{}))
	suite.Empty(suite.engine.RowStates())
}

// --- Run Test Suite ---
func TestMappingEngineTestSuite(t *testing.T) {
	suite.Run(t, new(MappingEngineTestSuite))
}
