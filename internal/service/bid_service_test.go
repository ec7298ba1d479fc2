package service

import (
	"context"
	"errors"
	"testing"

	"github.com/haulbridge/freight-tasks/internal/model"
)

func TestSubmitBid(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	carrier := createUser(t, env.db, "carrier@test", model.RoleCarrier, true, true)
	task := createTask(t, env.db, &model.Task{Title: "t"})

	bid, err := env.bids.SubmitBid(ctx, carrier.Principal(), SubmitBidInput{
		TaskID:  task.ID,
		Amount:  500,
		Message: strPtr("can do it tomorrow"),
	})
	if err != nil {
		t.Fatalf("SubmitBid: %v", err)
	}
	if bid.Status != model.BidStatusPending {
		t.Errorf("status = %s, want PENDING", bid.Status)
	}
	if bid.CarrierID != carrier.ID {
		t.Errorf("carrierId = %d, want %d", bid.CarrierID, carrier.ID)
	}
}

func TestSubmitBidDuplicateRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	carrier := createUser(t, env.db, "carrier@test", model.RoleCarrier, true, true)
	task := createTask(t, env.db, &model.Task{Title: "t"})

	if _, err := env.bids.SubmitBid(ctx, carrier.Principal(), SubmitBidInput{TaskID: task.ID, Amount: 500}); err != nil {
		t.Fatalf("first bid: %v", err)
	}
	_, err := env.bids.SubmitBid(ctx, carrier.Principal(), SubmitBidInput{TaskID: task.ID, Amount: 450})
	if !errors.Is(err, ErrDuplicateBid) {
		t.Fatalf("second bid: got %v, want ErrDuplicateBid", err)
	}

	// A different carrier may still bid.
	other := createUser(t, env.db, "other@test", model.RoleCarrier, true, true)
	if _, err := env.bids.SubmitBid(ctx, other.Principal(), SubmitBidInput{TaskID: task.ID, Amount: 480}); err != nil {
		t.Fatalf("other carrier bid: %v", err)
	}
}

func TestSubmitBidClosedTask(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	carrier := createUser(t, env.db, "carrier@test", model.RoleCarrier, true, true)

	cases := []struct {
		name string
		task *model.Task
	}{
		{"delivered", &model.Task{Title: "d", Status: model.TaskStatusDelivered}},
		{"cancelled", &model.Task{Title: "c", Status: model.TaskStatusCancelled}},
		{"paid", &model.Task{Title: "p", Status: model.TaskStatusNew, Paid: true}},
	}
	for _, tc := range cases {
		task := createTask(t, env.db, tc.task)
		_, err := env.bids.SubmitBid(ctx, carrier.Principal(), SubmitBidInput{TaskID: task.ID, Amount: 100})
		if !errors.Is(err, ErrTaskClosed) {
			t.Errorf("%s: got %v, want ErrTaskClosed", tc.name, err)
		}
	}
}

func TestSubmitBidValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	carrier := createUser(t, env.db, "carrier@test", model.RoleCarrier, true, true)
	task := createTask(t, env.db, &model.Task{Title: "t"})

	if _, err := env.bids.SubmitBid(ctx, carrier.Principal(), SubmitBidInput{TaskID: task.ID, Amount: 0}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("zero amount: got %v, want ErrInvalidInput", err)
	}
	if _, err := env.bids.SubmitBid(ctx, carrier.Principal(), SubmitBidInput{TaskID: 9999, Amount: 100}); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing task: got %v, want ErrNotFound", err)
	}
	if _, err := env.bids.SubmitBid(ctx, customerPrincipal(8), SubmitBidInput{TaskID: task.ID, Amount: 100}); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("customer bid: got %v, want ErrPermissionDenied", err)
	}

	unapproved := model.Principal{UserID: carrier.ID, Role: model.RoleCarrier, Approved: false, Active: true}
	if _, err := env.bids.SubmitBid(ctx, unapproved, SubmitBidInput{TaskID: task.ID, Amount: 100}); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("unapproved carrier: got %v, want ErrPermissionDenied", err)
	}
	inactive := model.Principal{UserID: carrier.ID, Role: model.RoleCarrier, Approved: true, Active: false}
	if _, err := env.bids.SubmitBid(ctx, inactive, SubmitBidInput{TaskID: task.ID, Amount: 100}); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("inactive carrier: got %v, want ErrPermissionDenied", err)
	}
}

func TestListBids(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	carrierA := createUser(t, env.db, "a@test", model.RoleCarrier, true, true)
	carrierB := createUser(t, env.db, "b@test", model.RoleCarrier, true, true)
	task := createTask(t, env.db, &model.Task{Title: "t"})

	if _, err := env.bids.SubmitBid(ctx, carrierA.Principal(), SubmitBidInput{TaskID: task.ID, Amount: 500}); err != nil {
		t.Fatalf("bid A: %v", err)
	}
	if _, err := env.bids.SubmitBid(ctx, carrierB.Principal(), SubmitBidInput{TaskID: task.ID, Amount: 600}); err != nil {
		t.Fatalf("bid B: %v", err)
	}

	own, err := env.bids.ListBids(ctx, carrierA.Principal())
	if err != nil {
		t.Fatalf("ListBids carrier: %v", err)
	}
	if len(own) != 1 || own[0].CarrierID != carrierA.ID {
		t.Errorf("carrier sees %d bids, want only their own", len(own))
	}

	all, err := env.bids.ListBids(ctx, adminPrincipal())
	if err != nil {
		t.Fatalf("ListBids admin: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("admin sees %d bids, want 2", len(all))
	}

	if _, err := env.bids.ListBids(ctx, customerPrincipal(9)); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("customer ListBids: got %v, want ErrPermissionDenied", err)
	}
}

func TestListTaskBidsOwnership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	customer := createUser(t, env.db, "c@test", model.RoleCustomer, true, true)
	carrier := createUser(t, env.db, "carrier@test", model.RoleCarrier, true, true)
	task := createTask(t, env.db, &model.Task{Title: "t", CustomerID: &customer.ID})

	if _, err := env.bids.SubmitBid(ctx, carrier.Principal(), SubmitBidInput{TaskID: task.ID, Amount: 300}); err != nil {
		t.Fatalf("SubmitBid: %v", err)
	}

	bids, err := env.bids.ListTaskBids(ctx, customer.Principal(), task.ID)
	if err != nil {
		t.Fatalf("owner ListTaskBids: %v", err)
	}
	if len(bids) != 1 {
		t.Errorf("owner sees %d bids, want 1", len(bids))
	}

	if _, err := env.bids.ListTaskBids(ctx, customerPrincipal(999), task.ID); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("foreign customer: got %v, want ErrPermissionDenied", err)
	}
}
