package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/coinkeeper/internal/models"
	"github.com/dmitrijs2005/coinkeeper/internal/services"
)

// AddExpense interactively records an expense transaction.
func (a *App) AddExpense(ctx context.Context) error {
	return a.addRecord(ctx, models.KindExpense)
}

// AddIncome interactively records an income transaction.
func (a *App) AddIncome(ctx context.Context) error {
	return a.addRecord(ctx, models.KindIncome)
}

func (a *App) addRecord(ctx context.Context, kind models.RecordKind) error {
	amount, err := GetAmount(a.reader, "Enter amount", os.Stdout)
	if err != nil {
		printlnFn(err.Error())
		return err
	}
	category, err := getSimpleText(a.reader, "Enter category", os.Stdout)
	if err != nil {
		return err
	}
	description, err := getSimpleText(a.reader, "Enter description (optional)", os.Stdout)
	if err != nil {
		return err
	}
	date, err := GetDate(a.reader, "Enter date", os.Stdout, time.Now)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	rec, err := a.ledger.Add(ctx, kind, services.RecordInput{
		Amount:      amount,
		Category:    category,
		Description: description,
		Date:        date,
	})
	if err != nil {
		printlnFn("Failed to add record:", err.Error())
		return err
	}

	printlnFn(fmt.Sprintf("Added %s %.2f (%s), id %s", kind, rec.Amount, rec.Category, rec.ID))
	return nil
}

// List prints the current user's transactions of one kind, newest first.
func (a *App) List(ctx context.Context, kind models.RecordKind) error {
	list, err := a.ledger.List(ctx, kind)
	if err != nil {
		printlnFn("Failed to list records:", err.Error())
		return err
	}

	if len(list) == 0 {
		printlnFn("No records")
		return nil
	}

	for _, rec := range list {
		printlnFn(fmt.Sprintf("%s  %10.2f  %-12s  %s  %s",
			rec.Date.Format("2006-01-02"), rec.Amount, rec.Category, rec.ID, rec.Description))
	}
	return nil
}

// Edit re-prompts all editable fields of one transaction.
func (a *App) Edit(ctx context.Context, kind models.RecordKind, id string) error {
	amount, err := GetAmount(a.reader, "Enter amount", os.Stdout)
	if err != nil {
		printlnFn(err.Error())
		return err
	}
	category, err := getSimpleText(a.reader, "Enter category", os.Stdout)
	if err != nil {
		return err
	}
	description, err := getSimpleText(a.reader, "Enter description (optional)", os.Stdout)
	if err != nil {
		return err
	}
	date, err := GetDate(a.reader, "Enter date", os.Stdout, time.Now)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	rec, err := a.ledger.Update(ctx, kind, id, services.RecordInput{
		Amount:      amount,
		Category:    category,
		Description: description,
		Date:        date,
	})
	if err != nil {
		printlnFn("Failed to update record:", err.Error())
		return err
	}

	printlnFn(fmt.Sprintf("Updated %s %.2f (%s)", rec.ID, rec.Amount, rec.Category))
	return nil
}

// Delete removes one transaction by id.
func (a *App) Delete(ctx context.Context, kind models.RecordKind, id string) error {
	if err := a.ledger.Delete(ctx, kind, id); err != nil {
		printlnFn("Failed to delete record:", err.Error())
		return err
	}
	printlnFn("Deleted", id)
	return nil
}
