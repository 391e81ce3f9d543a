package model_test

import (
	"testing"

	"github.com/kontorapp/kontor/fixtures"
)

func TestCompanySettingsSingleton(t *testing.T) {
	store := fixtures.NewTestStore(t)

	settings, err := store.LoadCompanySettings()
	if err != nil {
		t.Fatalf("load settings: %v", err)
	}
	if settings.ID != 1 {
		t.Errorf("settings id = %d, want fixed key 1", settings.ID)
	}

	settings.CompanyName = "Muster Treuhand GmbH"
	if err := store.SaveCompanySettings(settings); err != nil {
		t.Fatalf("save settings: %v", err)
	}

	// a second save path must hit the same row
	again, err := store.LoadCompanySettings()
	if err != nil {
		t.Fatalf("reload settings: %v", err)
	}
	again.CompanyName = "Muster Treuhand AG"
	if err := store.SaveCompanySettings(again); err != nil {
		t.Fatalf("save settings again: %v", err)
	}

	final, err := store.LoadCompanySettings()
	if err != nil {
		t.Fatalf("reload settings: %v", err)
	}
	if final.ID != 1 || final.CompanyName != "Muster Treuhand AG" {
		t.Errorf("settings = id %d name %q, want single row with latest name", final.ID, final.CompanyName)
	}
}
