package export

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/haulbridge/freight-tasks/internal/model"
)

type ExcelGenerator struct{}

func NewExcelGenerator() *ExcelGenerator {
	return &ExcelGenerator{}
}

// Generate builds the task register workbook: a summary sheet with counts per
// status, the full task list and every bid.
func (g *ExcelGenerator) Generate(tasks []model.Task) ([]byte, error) {
	file := excelize.NewFile()

	summarySheet := "Summary"
	file.SetSheetName("Sheet1", summarySheet)
	if err := g.writeSummary(file, summarySheet, tasks); err != nil {
		return nil, err
	}

	file.NewSheet("Tasks")
	if err := g.writeTasks(file, "Tasks", tasks); err != nil {
		return nil, err
	}

	file.NewSheet("Bids")
	if err := g.writeBids(file, "Bids", tasks); err != nil {
		return nil, err
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *ExcelGenerator) writeSummary(file *excelize.File, sheet string, tasks []model.Task) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	counts := map[model.TaskStatus]int{}
	bidCount := 0
	for _, task := range tasks {
		counts[task.Status]++
		bidCount += len(task.Bids)
	}

	set("A1", "Generated")
	set("B1", time.Now().Format("2006-01-02 15:04"))
	set("A2", "Tasks")
	set("B2", len(tasks))
	set("A3", "Bids")
	set("B3", bidCount)

	statuses := []model.TaskStatus{
		model.TaskStatusNew,
		model.TaskStatusPlanned,
		model.TaskStatusInProgress,
		model.TaskStatusDelivered,
		model.TaskStatusCancelled,
	}
	tableRow := 5
	set(fmt.Sprintf("A%d", tableRow), "Status")
	set(fmt.Sprintf("B%d", tableRow), "Count")
	for i, status := range statuses {
		row := tableRow + 1 + i
		set(fmt.Sprintf("A%d", row), string(status))
		set(fmt.Sprintf("B%d", row), counts[status])
	}

	_ = file.SetColWidth(sheet, "A", "A", 22)
	_ = file.SetColWidth(sheet, "B", "B", 18)
	return nil
}

func (g *ExcelGenerator) writeTasks(file *excelize.File, sheet string, tasks []model.Task) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	headers := []string{"ID", "Title", "Status", "Paid", "Price", "Pickup", "Dropoff", "Customer", "Carrier", "Bids", "Created"}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		set(cell, header)
	}

	for i, task := range tasks {
		row := i + 2
		set(fmt.Sprintf("A%d", row), task.ID)
		set(fmt.Sprintf("B%d", row), task.Title)
		set(fmt.Sprintf("C%d", row), string(task.Status))
		set(fmt.Sprintf("D%d", row), task.Paid)
		if task.Price != nil {
			set(fmt.Sprintf("E%d", row), *task.Price)
		}
		set(fmt.Sprintf("F%d", row), task.Pickup)
		set(fmt.Sprintf("G%d", row), task.Dropoff)
		if task.CustomerID != nil {
			set(fmt.Sprintf("H%d", row), *task.CustomerID)
		}
		if task.CarrierID != nil {
			set(fmt.Sprintf("I%d", row), *task.CarrierID)
		}
		set(fmt.Sprintf("J%d", row), len(task.Bids))
		set(fmt.Sprintf("K%d", row), task.CreatedAt.Format("2006-01-02 15:04"))
	}

	_ = file.SetColWidth(sheet, "B", "B", 36)
	_ = file.SetColWidth(sheet, "F", "G", 28)
	_ = file.SetColWidth(sheet, "K", "K", 18)
	return nil
}

func (g *ExcelGenerator) writeBids(file *excelize.File, sheet string, tasks []model.Task) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	headers := []string{"Bid ID", "Task ID", "Task", "Carrier", "Amount", "Status", "Created"}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		set(cell, header)
	}

	row := 2
	for _, task := range tasks {
		for _, bid := range task.Bids {
			set(fmt.Sprintf("A%d", row), bid.ID)
			set(fmt.Sprintf("B%d", row), task.ID)
			set(fmt.Sprintf("C%d", row), task.Title)
			carrier := fmt.Sprintf("%d", bid.CarrierID)
			if bid.Carrier != nil {
				carrier = bid.Carrier.Email
			}
			set(fmt.Sprintf("D%d", row), carrier)
			set(fmt.Sprintf("E%d", row), bid.Amount)
			set(fmt.Sprintf("F%d", row), string(bid.Status))
			set(fmt.Sprintf("G%d", row), bid.CreatedAt.Format("2006-01-02 15:04"))
			row++
		}
	}

	_ = file.SetColWidth(sheet, "C", "C", 36)
	_ = file.SetColWidth(sheet, "D", "D", 28)
	_ = file.SetColWidth(sheet, "G", "G", 18)
	return nil
}
