package models

import "testing"

func TestSexValidate(t *testing.T) {
	if err := SexMale.Validate(); err != nil {
		t.Fatal(err)
	}
	if err := SexFemale.Validate(); err != nil {
		t.Fatal(err)
	}
	if err := Sex("X").Validate(); err == nil {
		t.Fatal("expected an error for an unknown sex")
	}
	if err := Sex("").Validate(); err == nil {
		t.Fatal("expected an error for an empty sex")
	}
}

func TestAnimalStatusValidate(t *testing.T) {
	for _, status := range []AnimalStatus{AnimalStatusActive, AnimalStatusSold, AnimalStatusDead} {
		if err := status.Validate(); err != nil {
			t.Fatal(err)
		}
	}
	if err := AnimalStatus("Archived").Validate(); err == nil {
		t.Fatal("expected an error for an unknown status")
	}
}
