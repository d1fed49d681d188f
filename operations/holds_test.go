package operations_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/division-ops/hr"
	"github.com/warp/division-ops/operations"
)

// =============================================================================
// HOLDS
// =============================================================================

func TestPlaceHold_OnePerEmployee(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.veteran(t)

	h, err := f.svc.PlaceHold(ctx, manager, driver, operations.HoldInput{Reason: hr.HoldFMLA})
	require.NoError(t, err)
	assert.True(t, h.HoldDate.Equal(today))
	assert.Contains(t, f.published(), hr.NotifyAddHold)

	_, err = f.svc.PlaceHold(ctx, manager, driver, operations.HoldInput{Reason: hr.HoldPersonal})
	requireValidation(t, err, "reason")
}

func TestPlaceHold_OtherNeedsShortReason(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.veteran(t)

	_, err := f.svc.PlaceHold(ctx, manager, driver, operations.HoldInput{Reason: hr.HoldOther})
	requireValidation(t, err, "other_reason")

	_, err = f.svc.PlaceHold(ctx, manager, driver, operations.HoldInput{
		Reason:      hr.HoldOther,
		OtherReason: strings.Repeat("x", 31),
	})
	requireValidation(t, err, "other_reason")

	h, err := f.svc.PlaceHold(ctx, manager, driver, operations.HoldInput{Reason: hr.HoldOther, OtherReason: "Vehicle recall"})
	require.NoError(t, err)
	assert.Equal(t, "Vehicle recall", h.DisplayReason())
}

func TestEditHold_AndRemove(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.veteran(t)
	_, err := f.svc.PlaceHold(ctx, manager, driver, operations.HoldInput{Reason: hr.HoldTraining})
	require.NoError(t, err)

	release := today.AddDate(0, 0, 14)
	h, err := f.svc.EditHold(ctx, driver, operations.HoldInput{Reason: hr.HoldRetraining, ReleaseDate: &release})
	require.NoError(t, err)
	assert.Equal(t, hr.HoldRetraining, h.Reason)

	stored, err := f.svc.GetHold(ctx, driver)
	require.NoError(t, err)
	require.NotNil(t, stored.ReleaseDate)
	assert.True(t, stored.ReleaseDate.Equal(release))

	require.NoError(t, f.svc.RemoveHold(ctx, manager, driver))
	assert.Contains(t, f.published(), hr.NotifyRemoveHold)

	err = f.svc.RemoveHold(ctx, manager, driver)
	assert.True(t, hr.IsNotFound(err))
}

func TestPlaceHold_PendingTerminationMarksEmployee(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.veteran(t)

	_, err := f.svc.PlaceHold(ctx, manager, driver, operations.HoldInput{Reason: hr.HoldPendingTermination})
	require.NoError(t, err)
	assert.True(t, f.employee(t, driver).IsPendingTerm)

	require.NoError(t, f.svc.RemoveHold(ctx, manager, driver))
	assert.False(t, f.employee(t, driver).IsPendingTerm)
}

// =============================================================================
// SETTLEMENTS
// =============================================================================

func TestCreateSettlement_ReleasesPendingTermination(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.veteran(t)
	_, err := f.svc.AssignCounseling(ctx, manager, driver, counselingInput(hr.ActionDischarge))
	require.NoError(t, err)
	require.True(t, f.employee(t, driver).IsPendingTerm)

	// WHEN: terms are agreed
	st, err := f.svc.CreateSettlement(ctx, manager, driver, "Returns after two weeks of retraining.")
	require.NoError(t, err)

	// THEN: the hold is gone and a document is attached
	hold, err := f.svc.GetHold(ctx, driver)
	require.NoError(t, err)
	assert.Nil(t, hold)
	assert.False(t, f.employee(t, driver).IsPendingTerm)

	stored, err := f.store.GetSettlement(ctx, st.ID)
	require.NoError(t, err)
	assert.True(t, stored.HasDocument)
	assert.Contains(t, f.published(), hr.NotifyAddSettlement)
}

func TestSettlement_EditDeleteUpload(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.veteran(t)
	st, err := f.svc.CreateSettlement(ctx, manager, driver, "First draft")
	require.NoError(t, err)

	_, err = f.svc.EditSettlement(ctx, st.ID, "")
	requireValidation(t, err, "details")

	edited, err := f.svc.EditSettlement(ctx, st.ID, "Final terms")
	require.NoError(t, err)
	assert.Equal(t, "Final terms", edited.Details)

	require.NoError(t, f.svc.MarkUploaded(ctx, hr.RecordRef{Kind: hr.KindSettlement, ID: st.ID}))
	require.NoError(t, f.svc.DeleteSettlement(ctx, st.ID))

	list, err := f.svc.ListSettlements(ctx, driver)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.False(t, list[0].IsActive)
	assert.True(t, list[0].Uploaded)
	assert.True(t, list[0].HasDocument)
}
