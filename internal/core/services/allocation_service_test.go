package services_test

import (
	"context"
	"sync"
	"testing"

	"github.com/SscSPs/ledger_mapping_app/internal/apperrors"
	"github.com/SscSPs/ledger_mapping_app/internal/core/domain"
	"github.com/SscSPs/ledger_mapping_app/internal/core/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type AllocationEngineTestSuite struct {
	suite.Suite
	ctx    context.Context
	engine *services.AllocationEngine
}

func (suite *AllocationEngineTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.engine = services.NewAllocationEngine()

	suite.Require().NoError(suite.engine.UpsertSourceAccount(suite.ctx, domain.SourceAccount{
		ID: "src-1", AccountID: "5000", Name: "Shared services", Value: dec("65000"),
	}))
}

func (suite *AllocationEngineTestSuite) ratioAllocation(weights ...string) domain.Allocation {
	a := domain.Allocation{ID: "alloc-1", Name: "Shared services", SourceAccountID: "src-1"}
	for i, w := range weights {
		a.Targets = append(a.Targets, domain.TargetDatapoint{
			ID:       []string{"d1", "d2", "d3"}[i],
			TargetID: []string{"T1", "T2", "T3"}[i],
			Ratio:    dec(w),
		})
	}
	return a
}

func (suite *AllocationEngineTestSuite) TestCalculate_ProportionalValues() {
	suite.Require().NoError(suite.engine.UpsertAllocation(suite.ctx, suite.ratioAllocation("600", "400")))

	results := suite.engine.Calculate(suite.ctx, "2024-01")
	suite.Require().Len(results, 1)
	res := results[0]

	suite.False(res.Failed)
	suite.True(dec("65000").Equal(res.SourceAmount))
	suite.True(dec("1000").Equal(res.BasisTotal))
	suite.Require().Len(res.Targets, 2)
	suite.True(dec("39000").Equal(res.Targets[0].Value))
	suite.True(dec("26000").Equal(res.Targets[1].Value))
	suite.True(dec("0.6").Equal(res.Targets[0].Ratio))
	suite.True(dec("60").Equal(res.Targets[0].Percentage))
	suite.Require().NotNil(res.Adjustment)
	suite.True(res.Adjustment.Amount.IsZero())

	stored, ok := suite.engine.Result("alloc-1", "2024-01")
	suite.Require().True(ok)
	suite.True(dec("39000").Equal(stored.TargetTotal("d1")))
	suite.Len(suite.engine.Results("2024-01"), 1)
	suite.Empty(suite.engine.Results("2024-02"))
}

func (suite *AllocationEngineTestSuite) TestCalculate_RoundingAdjustment() {
	suite.Require().NoError(suite.engine.UpsertSourceAccount(suite.ctx, domain.SourceAccount{
		ID: "src-1", AccountID: "5000", Value: dec("100"),
	}))
	suite.Require().NoError(suite.engine.UpsertAllocation(suite.ctx, suite.ratioAllocation("1", "1", "1")))

	res := suite.engine.Calculate(suite.ctx, "2024-01")[0]
	total := decimal.Zero
	for _, t := range res.Targets {
		suite.True(dec("33.33").Equal(t.Value))
		total = total.Add(t.Value)
	}
	suite.Require().NotNil(res.Adjustment)
	suite.True(dec("0.01").Equal(res.Adjustment.Amount))
	suite.True(dec("100").Equal(total.Add(res.Adjustment.Amount)))
}

func (suite *AllocationEngineTestSuite) TestCalculate_ZeroBasisFails() {
	suite.Require().NoError(suite.engine.UpsertAllocation(suite.ctx, suite.ratioAllocation("0", "0")))

	res := suite.engine.Calculate(suite.ctx, "2024-01")[0]
	suite.True(res.Failed)
	suite.Equal("basis total is zero", res.Message)
	for _, t := range res.Targets {
		suite.True(t.Value.IsZero())
	}
}

func (suite *AllocationEngineTestSuite) TestCalculate_MissingSourceFails() {
	alloc := suite.ratioAllocation("1")
	alloc.SourceAccountID = "nope"
	suite.Require().NoError(suite.engine.UpsertAllocation(suite.ctx, alloc))

	res := suite.engine.Calculate(suite.ctx, "2024-01")[0]
	suite.True(res.Failed)
	suite.Contains(res.Message, "nope")
}

func (suite *AllocationEngineTestSuite) TestCalculate_GroupWeightsUsePeriodValues() {
	for _, b := range []domain.BasisAccount{
		{ID: "hc-a", Value: dec("10"), PeriodValues: map[string]decimal.Decimal{"2024-02": dec("30")}},
		{ID: "hc-b", Value: dec("10")},
		{ID: "hc-c", Value: dec("20")},
	} {
		suite.Require().NoError(suite.engine.UpsertBasisAccount(suite.ctx, b))
	}
	suite.Require().NoError(suite.engine.UpsertBasisGroup(suite.ctx, domain.BasisGroup{ID: "north", MemberIDs: []string{"hc-a", "hc-b"}}))
	suite.Require().NoError(suite.engine.UpsertBasisGroup(suite.ctx, domain.BasisGroup{ID: "south", MemberIDs: []string{"hc-c"}}))
	suite.Require().NoError(suite.engine.UpsertAllocation(suite.ctx, domain.Allocation{
		ID: "alloc-1", SourceAccountID: "src-1",
		Targets: []domain.TargetDatapoint{
			{ID: "n", TargetID: "T1", GroupID: "north"},
			{ID: "s", TargetID: "T2", GroupID: "south"},
		},
	}))

	jan := suite.engine.Calculate(suite.ctx, "2024-01")[0]
	suite.True(dec("32500").Equal(jan.TargetTotal("n")), jan.TargetTotal("n").String())

	feb := suite.engine.Calculate(suite.ctx, "2024-02")[0]
	suite.True(dec("40").Equal(feb.Targets[0].BasisValue))
	suite.True(dec("43333.33").Equal(feb.Targets[0].Value), feb.Targets[0].Value.String())
	suite.True(dec("65000").Equal(feb.TargetTotal("n").Add(feb.TargetTotal("s"))))
}

func (suite *AllocationEngineTestSuite) TestDefinitionChange_RecomputesCalculatedPeriods() {
	suite.Require().NoError(suite.engine.UpsertAllocation(suite.ctx, suite.ratioAllocation("600", "400")))
	suite.engine.Calculate(suite.ctx, "2024-01")

	suite.Require().NoError(suite.engine.UpsertSourceAccount(suite.ctx, domain.SourceAccount{
		ID: "src-1", AccountID: "5000", Value: dec("1000"),
	}))

	res, ok := suite.engine.Result("alloc-1", "2024-01")
	suite.Require().True(ok)
	suite.True(dec("600").Equal(res.Targets[0].Value))

	_, ok = suite.engine.Result("alloc-1", "2024-03")
	suite.False(ok, "uncalculated periods are not stored")
}

func (suite *AllocationEngineTestSuite) TestEstimate_DoesNotStore() {
	suite.Require().NoError(suite.engine.UpsertAllocation(suite.ctx, suite.ratioAllocation("3", "1")))

	est, ok := suite.engine.Estimate("alloc-1", "2024-01", dec("200"))
	suite.Require().True(ok)
	suite.True(dec("150").Equal(est.TargetTotal("d1")))

	_, ok = suite.engine.Result("alloc-1", "2024-01")
	suite.False(ok)
	_, ok = suite.engine.Estimate("missing", "2024-01", dec("1"))
	suite.False(ok)
}

func (suite *AllocationEngineTestSuite) TestUpsertAllocation_Validation() {
	err := suite.engine.UpsertAllocation(suite.ctx, domain.Allocation{SourceAccountID: "src-1"})
	suite.ErrorIs(err, apperrors.ErrValidation)

	err = suite.engine.UpsertAllocation(suite.ctx, domain.Allocation{ID: "a"})
	suite.ErrorIs(err, apperrors.ErrValidation)

	err = suite.engine.UpsertAllocation(suite.ctx, suite.ratioAllocation("-1"))
	suite.ErrorIs(err, apperrors.ErrValidation)

	err = suite.engine.UpsertAllocation(suite.ctx, domain.Allocation{
		ID: "dup", SourceAccountID: "src-1",
		Targets: []domain.TargetDatapoint{
			{ID: "d", TargetID: "T1", Ratio: dec("1"), IsExclusion: true},
			{ID: "d", TargetID: "T2", Ratio: dec("1"), IsExclusion: true},
		},
	})
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.ErrorContains(err, "datapoint d appears twice")
	_, ok := suite.engine.Allocation("dup")
	suite.False(ok, "rejected allocation is not stored")

	err = suite.engine.UpsertSourceAccount(suite.ctx, domain.SourceAccount{ID: "src-2"})
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *AllocationEngineTestSuite) TestUpsertAllocation_GeneratesDatapointIDs() {
	suite.Require().NoError(suite.engine.UpsertAllocation(suite.ctx, domain.Allocation{
		ID: "alloc-1", SourceAccountID: "src-1",
		Targets: []domain.TargetDatapoint{{TargetID: "T1", Ratio: dec("1")}},
	}))
	a, ok := suite.engine.Allocation("alloc-1")
	suite.Require().True(ok)
	suite.NotEmpty(a.Targets[0].ID)
}

func (suite *AllocationEngineTestSuite) TestFindAllocationForAccount() {
	suite.Require().NoError(suite.engine.UpsertSourceAccount(suite.ctx, domain.SourceAccount{
		ID: "src-e2", EntityID: "E2", AccountID: "5000", Value: dec("1"),
	}))
	b := suite.ratioAllocation("1")
	b.ID = "b-alloc"
	suite.Require().NoError(suite.engine.UpsertAllocation(suite.ctx, b))
	e2 := suite.ratioAllocation("1")
	e2.ID = "a-alloc"
	e2.SourceAccountID = "src-e2"
	suite.Require().NoError(suite.engine.UpsertAllocation(suite.ctx, e2))

	found, ok := suite.engine.FindAllocationForAccount("E2", "5000")
	suite.Require().True(ok)
	suite.Equal("a-alloc", found.ID, "lowest id wins")

	found, ok = suite.engine.FindAllocationForAccount("E1", "5000")
	suite.Require().True(ok)
	suite.Equal("b-alloc", found.ID, "empty source entity matches any entity")

	_, ok = suite.engine.FindAllocationForAccount("E1", "9999")
	suite.False(ok)
}

func (suite *AllocationEngineTestSuite) TestRemoveAllocation() {
	suite.Require().NoError(suite.engine.UpsertAllocation(suite.ctx, suite.ratioAllocation("1")))
	suite.engine.Calculate(suite.ctx, "2024-01")

	suite.Require().NoError(suite.engine.RemoveAllocation(suite.ctx, "alloc-1"))
	_, ok := suite.engine.Result("alloc-1", "2024-01")
	suite.False(ok)
	suite.Empty(suite.engine.Allocations())

	err := suite.engine.RemoveAllocation(suite.ctx, "alloc-1")
	suite.ErrorIs(err, services.ErrAllocationNotFound)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *AllocationEngineTestSuite) TestSubscribe_PublishesEvents() {
	var mu sync.Mutex
	var kinds []domain.AllocationEventKind
	unsubscribe := suite.engine.Subscribe(func(event domain.AllocationEvent) {
		mu.Lock()
		defer mu.Unlock()
		kinds = append(kinds, event.Kind)
	})

	suite.Require().NoError(suite.engine.UpsertAllocation(suite.ctx, suite.ratioAllocation("1")))
	suite.engine.Calculate(suite.ctx, "2024-01")
	suite.Require().NoError(suite.engine.RemoveAllocation(suite.ctx, "alloc-1"))

	unsubscribe()
	unsubscribe()
	suite.Require().NoError(suite.engine.UpsertBasisAccount(suite.ctx, domain.BasisAccount{ID: "b"}))

	mu.Lock()
	defer mu.Unlock()
	suite.Equal([]domain.AllocationEventKind{
		domain.EventAllocationChanged,
		domain.EventResultsChanged,
		domain.EventAllocationRemoved,
	}, kinds)
}

func TestAllocationEngineTestSuite(t *testing.T) {
	suite.Run(t, new(AllocationEngineTestSuite))
}

// --- Dynamic exclusions across both engines ---

type DynamicExclusionTestSuite struct {
	suite.Suite
	ctx         context.Context
	mockRepo    *MockMappingRepository
	allocations *services.AllocationEngine
	mappings    *services.MappingEngine
	rowID       string
}

func (suite *DynamicExclusionTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.mockRepo = new(MockMappingRepository)
	suite.allocations = services.NewAllocationEngine()
	suite.Require().NoError(suite.allocations.UpsertSourceAccount(suite.ctx, domain.SourceAccount{
		ID: "src-1", EntityID: "E1", AccountID: "5000", Value: dec("2000"),
	}))
	suite.Require().NoError(suite.allocations.UpsertAllocation(suite.ctx, domain.Allocation{
		ID: "alloc-1", SourceAccountID: "src-1",
		Targets: []domain.TargetDatapoint{
			{ID: "keep", TargetID: "T1", Ratio: dec("60")},
			{ID: "drop", TargetID: "EXC", Ratio: dec("40"), IsExclusion: true},
		},
	}))

	suite.mappings = services.NewMappingEngine("wp-1", suite.mockRepo,
		services.WithCatalog(testCatalog()),
		services.WithAllocationReader(suite.allocations),
	)
	rows, err := suite.mappings.LoadImportedAccounts(suite.ctx, []domain.ImportRow{
		{EntityID: "E1", AccountID: "5000", NetChange: dec("1000"), GLMonth: "2024-01"},
	})
	suite.Require().NoError(err)
	suite.rowID = rows[0].ID
}

func (suite *DynamicExclusionTestSuite) TearDownTest() {
	suite.mappings.Close()
}

func (suite *DynamicExclusionTestSuite) dynamic() domain.DynamicExclusion {
	row, err := suite.mappings.Row(suite.rowID)
	suite.Require().NoError(err)
	d, ok := row.Exclusion.(domain.DynamicExclusion)
	suite.Require().True(ok, "row carries a dynamic exclusion")
	return d
}

func (suite *DynamicExclusionTestSuite) TestEstimatedUntilCalculated() {
	row, err := suite.mappings.UpdateExclusion(suite.ctx, suite.rowID, domain.DynamicExclusion{})
	suite.Require().NoError(err)
	suite.True(dec("400").Equal(domain.ResolveExcludedAmount(row)))
	suite.True(suite.dynamic().Estimated)

	suite.mockRepo.On("SaveMappingBatch", mock.Anything, "wp-1", mock.Anything).
		Return([]domain.SaveItemResult{{RowID: suite.rowID, Success: true}}, nil).Once()
	_, err = suite.mappings.SaveMappings(suite.ctx, nil)
	suite.Require().NoError(err)

	// the stored result allocates the source balance, clamped to the row balance
	suite.allocations.Calculate(suite.ctx, "2024-01")
	d := suite.dynamic()
	suite.False(d.Estimated)
	suite.True(dec("800").Equal(d.ResolvedAmount), d.ResolvedAmount.String())

	for _, st := range suite.mappings.RowStates() {
		suite.False(st.Dirty, "allocation refreshes do not dirty rows")
	}
}

func (suite *DynamicExclusionTestSuite) TestRemovedAllocationResolvesToZero() {
	_, err := suite.mappings.UpdateExclusion(suite.ctx, suite.rowID, domain.DynamicExclusion{DatapointID: "alloc-1"})
	suite.Require().NoError(err)
	suite.True(dec("400").Equal(suite.dynamic().ResolvedAmount))

	suite.Require().NoError(suite.allocations.RemoveAllocation(suite.ctx, "alloc-1"))
	suite.True(suite.dynamic().ResolvedAmount.IsZero())
}

func (suite *DynamicExclusionTestSuite) TestFinalizeDynamicRowUsesAllocation() {
	_, err := suite.mappings.UpdateMappingType(suite.ctx, suite.rowID, domain.MappingDynamic)
	suite.Require().NoError(err)

	valid, resolved, _ := suite.mappings.FinalizeMappings(suite.ctx, nil)
	suite.Require().True(valid)
	suite.Require().Len(resolved[0].Lines, 2)
	suite.Equal("T1", resolved[0].Lines[0].TargetID)
	suite.True(dec("600").Equal(resolved[0].Lines[0].Amount))
	suite.True(resolved[0].Lines[1].IsExclusion)
	suite.True(dec("400").Equal(resolved[0].Lines[1].Amount))
}

func (suite *DynamicExclusionTestSuite) TestFinalizeDynamicRowSpreadsRowBalanceAfterCalculate() {
	_, err := suite.mappings.UpdateMappingType(suite.ctx, suite.rowID, domain.MappingDynamic)
	suite.Require().NoError(err)
	// the stored result spreads the 2000 source balance
	results := suite.allocations.Calculate(suite.ctx, "2024-01")
	suite.Require().Len(results, 1)
	suite.True(dec("800").Equal(results[0].ExclusionTotal()))

	valid, resolved, _ := suite.mappings.FinalizeMappings(suite.ctx, nil)
	suite.Require().True(valid)
	suite.Require().Len(resolved[0].Lines, 2)
	total := decimal.Zero
	for _, l := range resolved[0].Lines {
		total = total.Add(l.Amount)
	}
	suite.True(dec("1000").Equal(total), total.String())
	suite.True(dec("400").Equal(resolved[0].Lines[1].Amount))
}

func TestDynamicExclusionTestSuite(t *testing.T) {
	suite.Run(t, new(DynamicExclusionTestSuite))
}
