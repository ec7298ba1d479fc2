package service

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/haulbridge/freight-tasks/internal/model"
	"github.com/haulbridge/freight-tasks/internal/repository"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	// One shared connection: every :memory: connection is its own database.
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&model.User{}, &model.Task{}, &model.Bid{}, &model.TaskCarrierWhitelist{})
	if err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	return db
}

type testEnv struct {
	db          *gorm.DB
	tasks       *TaskService
	bids        *BidService
	assignments *AssignmentService
	taskRepo    *repository.TaskRepository
	bidRepo     *repository.BidRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := setupTestDB(t)
	taskRepo := repository.NewTaskRepository(db)
	bidRepo := repository.NewBidRepository(db)
	userRepo := repository.NewUserRepository(db)

	return &testEnv{
		db:          db,
		tasks:       NewTaskService(taskRepo, userRepo),
		bids:        NewBidService(bidRepo, taskRepo),
		assignments: NewAssignmentService(bidRepo, taskRepo, userRepo),
		taskRepo:    taskRepo,
		bidRepo:     bidRepo,
	}
}

func createUser(t *testing.T, db *gorm.DB, email string, role model.Role, approved, active bool) *model.User {
	t.Helper()

	user := &model.User{Email: email, Role: role, Approved: approved, Active: active}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func createTask(t *testing.T, db *gorm.DB, task *model.Task) *model.Task {
	t.Helper()

	if task.Status == "" {
		task.Status = model.TaskStatusNew
	}
	if err := db.Create(task).Error; err != nil {
		t.Fatalf("create task: %v", err)
	}
	return task
}

func adminPrincipal() model.Principal {
	return model.Principal{UserID: 1, Role: model.RoleAdmin, Approved: true, Active: true}
}

func carrierPrincipal(id uint) model.Principal {
	return model.Principal{UserID: id, Role: model.RoleCarrier, Approved: true, Active: true}
}

func customerPrincipal(id uint) model.Principal {
	return model.Principal{UserID: id, Role: model.RoleCustomer, Approved: true, Active: true}
}

func floatPtr(v float64) *float64 { return &v }
func strPtr(v string) *string     { return &v }
