package main

import (
	"context"
	"flag"
	"log"

	"inspection-be/internal/config"
	"inspection-be/internal/entity"
	"inspection-be/internal/model"
	"inspection-be/internal/repository/implementation"
	"inspection-be/pkg/database"
)

type seedLocation struct {
	Name  string
	Tasks []string
}

// demoChecklist mirrors a typical residential handover. The last location
// has no checklist item on purpose, so the unmatched-location reply can be tried.
var demoChecklist = []seedLocation{
	{Name: "Kitchen", Tasks: []string{"Check sink and taps", "Check stove and hood", "Check cabinet hinges"}},
	{Name: "Master Bedroom", Tasks: []string{"Check windows", "Check wardrobe doors"}},
	{Name: "Bathroom", Tasks: []string{"Check water pressure", "Check floor drainage", "Check grout and tiles"}},
	{Name: "Balcony"},
}

func main() {
	phone := flag.String("phone", "+6591234567", "inspector phone number")
	name := flag.String("name", "Demo Inspector", "inspector name")
	flag.Parse()

	cfg := config.Load()
	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, cfg.IsProduction())
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}
	if err := db.AutoMigrate(model.All()...); err != nil {
		log.Fatal("Error: AutoMigrate failed:", err)
	}

	ctx := context.Background()
	inspectors := implementation.NewInspectorRepository(db)
	workOrders := implementation.NewWorkOrderRepository(db)
	locations := implementation.NewLocationRepository(db)
	checklists := implementation.NewChecklistRepository(db)

	log.Println("Seeding demo inspection...")

	inspector, err := inspectors.FindByPhone(ctx, *phone)
	if err != nil {
		log.Fatal("Error: Failed to look up inspector:", err)
	}
	if inspector == nil {
		inspector = &entity.Inspector{Name: *name, Phone: *phone, Status: entity.InspectorStatusActive}
		if err := inspectors.Create(ctx, inspector); err != nil {
			log.Fatal("Error: Failed to create inspector:", err)
		}
		log.Printf("Created inspector: %s (%s)", inspector.Name, inspector.Phone)
	} else {
		log.Printf("Inspector %s already exists, reusing...", inspector.Phone)
	}

	contract := &entity.Contract{ClientName: "Demo Residences", PropertyAddress: "1 Demo Street"}
	must(checklists.CreateContract(ctx, contract), "contract")

	checklist := &entity.Checklist{ContractId: contract.Id, Name: "Handover"}
	must(checklists.CreateChecklist(ctx, checklist), "checklist")

	workOrder := &entity.WorkOrder{ContractId: contract.Id, Title: "Demo unit handover", Status: entity.WorkOrderStatusOpen}
	must(workOrders.Create(ctx, workOrder), "work order")
	must(workOrders.AssignInspector(ctx, &entity.WorkOrderInspector{
		WorkOrderId: workOrder.Id,
		InspectorId: inspector.Id,
		Position:    1,
	}), "assignment")

	taskCount := 0
	for i, loc := range demoChecklist {
		must(locations.Create(ctx, &entity.Location{WorkOrderId: workOrder.Id, Name: loc.Name, OrderIndex: i + 1}), "location")
		if len(loc.Tasks) == 0 {
			continue
		}

		item := &entity.ChecklistItem{ChecklistId: checklist.Id, Name: loc.Name, OrderIndex: i + 1}
		must(checklists.CreateItem(ctx, item), "checklist item")
		for j, task := range loc.Tasks {
			must(checklists.CreateTask(ctx, &entity.ChecklistTask{ChecklistItemId: item.Id, Name: task, OrderIndex: j + 1}), "task")
			taskCount++
		}
	}

	log.Printf("Created work order %s with %d locations and %d tasks", workOrder.Id, len(demoChecklist), taskCount)
	log.Println("Seeding completed!")
}

func must(err error, what string) {
	if err != nil {
		log.Fatalf("Error: Failed to create %s: %v", what, err)
	}
}
