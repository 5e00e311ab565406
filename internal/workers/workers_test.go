package workers

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/plateadmin/plateadmin/internal/database"
	"github.com/plateadmin/plateadmin/internal/models"
	"github.com/plateadmin/plateadmin/internal/tasks"
)

type fakeEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (f *fakeEnqueuer) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{Type: task.Type()}, nil
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "workers.sqlite"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func TestCheckAndEnqueueInventoryRefresh(t *testing.T) {
	db := openTestDB(t)
	now := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

	client := &fakeEnqueuer{}

	// no config row yet
	assert.False(t, checkAndEnqueueInventoryRefresh(client, db, zerolog.Nop(), now))

	config := models.Config{JWTSecret: "secret"}
	require.NoError(t, db.Create(&config).Error)

	// no schedule
	assert.False(t, checkAndEnqueueInventoryRefresh(client, db, zerolog.Nop(), now))

	require.NoError(t, db.Model(&config).Update("inventory_schedule", "0 * * * *").Error)

	// due: never ran
	assert.True(t, checkAndEnqueueInventoryRefresh(client, db, zerolog.Nop(), now))
	require.Len(t, client.tasks, 1)
	assert.Equal(t, tasks.TypeInventoryRefresh, client.tasks[0].Type())

	var reloaded models.Config
	require.NoError(t, db.First(&reloaded).Error)
	require.NotNil(t, reloaded.NextInventoryRefreshAt)
	assert.True(t, reloaded.NextInventoryRefreshAt.Equal(time.Date(2024, 3, 15, 11, 0, 0, 0, time.UTC)))

	// not due again until 11:00
	assert.False(t, checkAndEnqueueInventoryRefresh(client, db, zerolog.Nop(), now.Add(10*time.Minute)))
	assert.True(t, checkAndEnqueueInventoryRefresh(client, db, zerolog.Nop(), now.Add(31*time.Minute)))
	assert.Len(t, client.tasks, 2)
}

func TestCheckAndEnqueueInventoryRefresh_EnqueueFailureKeepsSchedule(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.Create(&models.Config{JWTSecret: "secret", InventorySchedule: "0 * * * *"}).Error)

	client := &fakeEnqueuer{err: errors.New("redis down")}
	assert.False(t, checkAndEnqueueInventoryRefresh(client, db, zerolog.Nop(), time.Now()))

	var config models.Config
	require.NoError(t, db.First(&config).Error)
	assert.Nil(t, config.NextInventoryRefreshAt, "a failed enqueue is retried on the next tick")
}

func TestCheckAndEnqueueInventoryRefresh_InvalidSchedule(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.Create(&models.Config{JWTSecret: "secret", InventorySchedule: "whenever"}).Error)

	client := &fakeEnqueuer{}
	assert.False(t, checkAndEnqueueInventoryRefresh(client, db, zerolog.Nop(), time.Now()))
	assert.Empty(t, client.tasks)
}

func TestHandleInventoryRefresh(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.Create(&models.Config{JWTSecret: "secret", LowStockThreshold: 10}).Error)
	require.NoError(t, db.Create(&models.Product{Name: "Wood", SKU: "W-1", Price: 1299, Stock: 3, Status: models.ProductActive}).Error)

	task, err := tasks.NewInventoryRefreshTask("01HADMIN")
	require.NoError(t, err)

	require.NoError(t, HandleInventoryRefresh(context.Background(), task, db, zerolog.Nop()))

	var product models.Product
	require.NoError(t, db.First(&product).Error)
	assert.Equal(t, models.ProductLowStock, product.Status)

	var config models.Config
	require.NoError(t, db.First(&config).Error)
	assert.NotNil(t, config.LastInventoryRefreshAt)
}

func TestHandlePasswordResetMail(t *testing.T) {
	task, err := tasks.NewPasswordResetMailTask("01HUSER", "jane@example.com", "http://localhost/reset-password?token=abc")
	require.NoError(t, err)
	assert.NoError(t, HandlePasswordResetMail(context.Background(), task, zerolog.Nop()))

	incomplete, err := tasks.NewPasswordResetMailTask("01HUSER", "", "")
	require.NoError(t, err)
	err = HandlePasswordResetMail(context.Background(), incomplete, zerolog.Nop())
	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}
