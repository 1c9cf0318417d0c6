package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/handheld/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSnapshotStoreContract runs a suite of tests to verify that a SnapshotStore
// implementation adheres to the defined interface contract.
func RunSnapshotStoreContract(t *testing.T, store SnapshotStore) {
	ctx := context.Background()
	station := "contract-station-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		state := domain.WorkflowState{
			CurrentState: "label_state",
			Data: &domain.Data{
				Screen:      "/video_feed",
				NInspection: 2,
				Report:      &domain.Report{Text: map[string]string{"inspector": "Ada"}},
			},
			Commands: []domain.Command{domain.UpdatePage(2)},
		}
		record := domain.NewRecord(station, domain.NewState("standby_state"))
		record.Apply(state)

		require.NoError(t, store.Save(ctx, station, record), "Save should not return error")

		loaded, err := store.Load(ctx, station)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, station, loaded.Station)
		assert.Equal(t, "label_state", loaded.State.CurrentState)
		assert.Equal(t, []string{"standby_state", "label_state"}, loaded.History)
		require.NotNil(t, loaded.State.Data)
		assert.Equal(t, "/video_feed", loaded.State.Data.Screen)
		assert.Equal(t, 2, loaded.State.Data.NInspection)
		assert.Equal(t, "Ada", loaded.State.Data.Report.Text["inspector"])
		assert.Equal(t, []domain.Command{domain.UpdatePage(2)}, loaded.State.Commands)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+station)
		assert.ErrorIs(t, err, domain.ErrRecordNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, station, domain.NewRecord(station, domain.NewState("standby_state"))))

		require.NoError(t, store.Delete(ctx, station), "Delete should not return error")

		_, err := store.Load(ctx, station)
		assert.ErrorIs(t, err, domain.ErrRecordNotFound, "Load after Delete should return ErrRecordNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := station + "-1"
		id2 := station + "-2"
		_ = store.Save(ctx, id1, domain.NewRecord(id1, domain.NewState("standby_state")))
		_ = store.Save(ctx, id2, domain.NewRecord(id2, domain.NewState("standby_state")))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		stations, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, stations, id1)
		assert.Contains(t, stations, id2)
	})
}
