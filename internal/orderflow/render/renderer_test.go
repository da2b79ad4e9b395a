package render

import (
	"strings"
	"testing"
)

func TestSummarySkipsEmptyAndZeroItems(t *testing.T) {
	t.Parallel()

	loc := NewLocalizer("en")
	got := Summary(loc, Order{
		ID:           "corr-1",
		ShopName:     "Main Street",
		DeliveryDate: "2026-04-20",
		Comment:      "leave at the door",
		Items: []Item{
			{Name: "Cylinder A", Quantity: "2"},
			{Name: "Cylinder B", Quantity: "0"},
			{Name: "", Quantity: "3"},
			{Name: "Cylinder C", Quantity: ""},
		},
	})

	if !strings.Contains(got, "Cylinder A x 2") {
		t.Errorf("summary missing item line:\n%s", got)
	}
	for _, absent := range []string{"Cylinder B", "Cylinder C"} {
		if strings.Contains(got, absent) {
			t.Errorf("summary should omit %q:\n%s", absent, got)
		}
	}
	if !strings.Contains(got, "Pickup shop: Main Street") {
		t.Errorf("summary missing shop line:\n%s", got)
	}
	if !strings.Contains(got, "Note: leave at the door") {
		t.Errorf("summary missing comment line:\n%s", got)
	}
}

func TestSummaryOmitsBlankFields(t *testing.T) {
	t.Parallel()

	loc := NewLocalizer("en")
	got := Summary(loc, Order{ID: "corr-1"})

	if strings.Contains(got, "Pickup shop") || strings.Contains(got, "Note:") {
		t.Errorf("summary should omit blank fields:\n%s", got)
	}
}

func TestUserConfirmationIncludesSummary(t *testing.T) {
	t.Parallel()

	loc := NewLocalizer("en")
	got := UserConfirmation(loc, Order{ID: "corr-1", ShopName: "Main Street"})

	if !strings.Contains(got, "Thank you") {
		t.Errorf("confirmation missing header:\n%s", got)
	}
	if !strings.Contains(got, "Main Street") {
		t.Errorf("confirmation missing summary:\n%s", got)
	}
}

func TestLocalizedCatalogJapanese(t *testing.T) {
	t.Parallel()

	loc := NewLocalizer("ja")
	got := Cancelled(loc)
	if got == "reply.cancelled" || got == "" {
		t.Errorf("Cancelled(ja) = %q, want localized copy", got)
	}
	if got == Cancelled(NewLocalizer("en")) {
		t.Error("Japanese catalog should differ from English")
	}
}

func TestNewLocalizerFallsBackToEnglish(t *testing.T) {
	t.Parallel()

	loc := NewLocalizer("not-a-tag")
	if got := QuestionAck(loc); !strings.Contains(got, "staff") {
		t.Errorf("QuestionAck = %q, want English fallback", got)
	}
}

func TestWelcomeIncludesName(t *testing.T) {
	t.Parallel()

	loc := NewLocalizer("en")
	if got := Welcome(loc, " Alex "); !strings.Contains(got, "Alex") {
		t.Errorf("Welcome = %q, want display name", got)
	}
}
