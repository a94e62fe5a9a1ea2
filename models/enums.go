package models

import "errors"

type Sex string

const (
	SexMale   Sex = "M"
	SexFemale Sex = "F"
)

func (s Sex) Validate() error {
	switch s {
	case SexMale, SexFemale:
		return nil
	}
	return errors.New("sex must be M or F")
}

// AnimalStatus is derived, never stored: an animal with a sale record is
// Sold, with a death record Dead, otherwise Active.
type AnimalStatus string

const (
	AnimalStatusActive AnimalStatus = "Active"
	AnimalStatusSold   AnimalStatus = "Sold"
	AnimalStatusDead   AnimalStatus = "Dead"
)

func (s AnimalStatus) Validate() error {
	switch s {
	case AnimalStatusActive, AnimalStatusSold, AnimalStatusDead:
		return nil
	}
	return errors.New("invalid animal status")
}
