// Package diff compares two table inventories and produces an ordered
// plan of DDL actions that migrate the current state to the desired one.
package diff

import (
	"fmt"

	"github.com/tablekit/chdump/internal/inventory"
)

// ActionType is the kind of DDL action to perform.
type ActionType string

const (
	ActionCreateTable  ActionType = "CREATE_TABLE"
	ActionDropTable    ActionType = "DROP_TABLE"
	ActionReplaceTable ActionType = "REPLACE_TABLE"
)

// Action is a single DDL operation.
type Action struct {
	Type ActionType
	// Table is the qualified table name (database.name when known).
	Table string
	// Record is the desired definition for create and replace actions.
	Record *inventory.TableRecord
	Reason string
}

// Plan is an ordered list of actions: creates first, then drops, then
// replacements of tables whose definition changed.
type Plan struct {
	Actions []Action
}

// Differ compares desired and current inventories. The diff unit is the
// whole table: inventories store complete DDL strings, so a changed
// definition is a drop-and-recreate, not a column migration.
type Differ struct{}

// NewDiffer creates a Differ.
func NewDiffer() *Differ {
	return &Differ{}
}

// Plan computes the actions required to move current to desired. Tables
// are matched by qualified name; record order within each action group
// follows the source inventory's order.
func (d *Differ) Plan(desired, current *inventory.Document) (*Plan, error) {
	currentByName := indexByName(current)
	desiredByName := indexByName(desired)

	plan := &Plan{}

	for n := range desired.Data {
		rec := &desired.Data[n]
		name := QualifiedName(*rec)
		if _, exists := currentByName[name]; !exists {
			plan.Actions = append(plan.Actions, Action{
				Type:   ActionCreateTable,
				Table:  name,
				Record: rec,
				Reason: fmt.Sprintf("table %s is defined in the inventory but does not exist", name),
			})
		}
	}

	for n := range current.Data {
		name := QualifiedName(current.Data[n])
		if _, exists := desiredByName[name]; !exists {
			plan.Actions = append(plan.Actions, Action{
				Type:   ActionDropTable,
				Table:  name,
				Reason: fmt.Sprintf("table %s exists but is not defined in the inventory", name),
			})
		}
	}

	for n := range desired.Data {
		rec := &desired.Data[n]
		name := QualifiedName(*rec)
		cur, exists := currentByName[name]
		if !exists {
			continue
		}
		if cur.CreateTableQuery != rec.CreateTableQuery {
			plan.Actions = append(plan.Actions, Action{
				Type:   ActionReplaceTable,
				Table:  name,
				Record: rec,
				Reason: fmt.Sprintf("table %s definition differs from the inventory", name),
			})
		}
	}

	return plan, nil
}

// QualifiedName returns database.name, or just name for records without a
// database (hand-written inventories).
func QualifiedName(rec inventory.TableRecord) string {
	if rec.Database == "" {
		return rec.Name
	}
	return rec.Database + "." + rec.Name
}

func indexByName(doc *inventory.Document) map[string]*inventory.TableRecord {
	index := make(map[string]*inventory.TableRecord, len(doc.Data))
	for n := range doc.Data {
		index[QualifiedName(doc.Data[n])] = &doc.Data[n]
	}
	return index
}
