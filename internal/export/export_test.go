package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/haulbridge/freight-tasks/internal/model"
)

func sampleTasks() []model.Task {
	price := 450.0
	carrierID := uint(7)
	message := "available this week"
	return []model.Task{
		{
			ID:        1,
			Title:     "Apartment move",
			Pickup:    "Main St 1",
			Dropoff:   "Harbor Rd 9",
			Status:    model.TaskStatusPlanned,
			Price:     &price,
			CarrierID: &carrierID,
			CreatedAt: time.Now(),
			Bids: []model.Bid{
				{ID: 11, TaskID: 1, CarrierID: 7, Amount: 450, Message: &message, Status: model.BidStatusAccepted, CreatedAt: time.Now()},
				{ID: 12, TaskID: 1, CarrierID: 8, Amount: 520, Status: model.BidStatusRejected, CreatedAt: time.Now()},
			},
		},
		{ID: 2, Title: "Office chairs", Status: model.TaskStatusNew, CreatedAt: time.Now()},
	}
}

func TestExcelGenerate(t *testing.T) {
	content, err := NewExcelGenerator().Generate(sampleTasks())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	file, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer file.Close()

	for _, sheet := range []string{"Summary", "Tasks", "Bids"} {
		index, err := file.GetSheetIndex(sheet)
		if err != nil || index < 0 {
			t.Errorf("missing sheet %q", sheet)
		}
	}

	title, err := file.GetCellValue("Tasks", "B2")
	if err != nil {
		t.Fatalf("read cell: %v", err)
	}
	if title != "Apartment move" {
		t.Errorf("Tasks!B2 = %q", title)
	}
}

func TestPDFGenerate(t *testing.T) {
	tasks := sampleTasks()
	content, err := NewPDFGenerator().Generate(tasks[0], tasks[0].Bids)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !bytes.HasPrefix(content, []byte("%PDF")) {
		t.Errorf("output is not a PDF document")
	}
}
