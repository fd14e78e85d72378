package backend

import (
	"context"
	"fmt"
	"net/http"
)

// ListPets returns the caller's pets, or every pet for staff.
func (u *UserClient) ListPets(ctx context.Context) ([]Pet, error) {
	return listCall[Pet](ctx, u, "list_pets", "/api/pets/")
}

// GetPet fetches one pet.
func (u *UserClient) GetPet(ctx context.Context, id int) (*Pet, error) {
	var out Pet
	if err := u.call(ctx, "get_pet", http.MethodGet, fmt.Sprintf("/api/pets/%d/", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreatePet registers a pet for the caller.
func (u *UserClient) CreatePet(ctx context.Context, req PetRequest) (*Pet, error) {
	var out Pet
	if err := u.call(ctx, "create_pet", http.MethodPost, "/api/pets/", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PetHistory returns the medical records of a pet, newest first.
func (u *UserClient) PetHistory(ctx context.Context, petID int) ([]MedicalRecord, error) {
	return listCall[MedicalRecord](ctx, u, "pet_history", fmt.Sprintf("/api/pets/%d/history/", petID))
}

// ListMedicalRecords returns the records visible to the caller.
func (u *UserClient) ListMedicalRecords(ctx context.Context) ([]MedicalRecord, error) {
	return listCall[MedicalRecord](ctx, u, "list_medical_records", "/api/pets/medical-records/")
}

// CreateMedicalRecord adds a visit entry. Veterinarians only.
func (u *UserClient) CreateMedicalRecord(ctx context.Context, rec MedicalRecord) (*MedicalRecord, error) {
	var out MedicalRecord
	if err := u.call(ctx, "create_medical_record", http.MethodPost, "/api/pets/medical-records/", rec, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PreRegistrationResult is returned by PreRegisterPet.
type PreRegistrationResult struct {
	Message string `json:"message"`
	Pet     Pet    `json:"pet"`
}

// PreRegisterPet records a pet for an owner email before the owner has an
// account. No authentication needed.
func (c *Client) PreRegisterPet(ctx context.Context, req PreRegistration) (*PreRegistrationResult, error) {
	var out PreRegistrationResult
	if err := c.doJSON(ctx, "pre_register_pet", http.MethodPost, "/api/pets/pre-register/", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
