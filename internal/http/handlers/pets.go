package handlers

import (
	"net/http"
	"strings"

	"github.com/wolfman30/pochita-booking/internal/backend"
)

// PetsHandler proxies pet and medical record endpoints.
type PetsHandler struct {
	base
}

// NewPetsHandler creates the pet endpoints.
func NewPetsHandler(d Deps) *PetsHandler {
	return &PetsHandler{base: newBase(d)}
}

// List returns the pets visible to the caller.
// GET /api/pets
func (h *PetsHandler) List(w http.ResponseWriter, r *http.Request) {
	pets, err := h.userClient(r).ListPets(r.Context())
	if err != nil {
		h.backendError(w, "list_pets", err, "Error al cargar mascotas")
		return
	}
	if pets == nil {
		pets = []backend.Pet{}
	}
	writeJSON(w, http.StatusOK, pets)
}

// Get returns one pet.
// GET /api/pets/{id}
func (h *PetsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(r, "id")
	if !ok {
		jsonError(w, "invalid pet id", http.StatusBadRequest)
		return
	}
	pet, err := h.userClient(r).GetPet(r.Context(), id)
	if err != nil {
		h.backendError(w, "get_pet", err, "Error al cargar la mascota")
		return
	}
	writeJSON(w, http.StatusOK, pet)
}

// Create registers a pet owned by the caller.
// POST /api/pets
func (h *PetsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req backend.PetRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || strings.TrimSpace(req.Species) == "" {
		jsonError(w, "Nombre y especie son obligatorios", http.StatusBadRequest)
		return
	}
	pet, err := h.userClient(r).CreatePet(r.Context(), req)
	if err != nil {
		h.backendError(w, "create_pet", err, "Error al registrar la mascota")
		return
	}
	writeJSON(w, http.StatusCreated, pet)
}

// History returns a pet's medical records.
// GET /api/pets/{id}/history
func (h *PetsHandler) History(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(r, "id")
	if !ok {
		jsonError(w, "invalid pet id", http.StatusBadRequest)
		return
	}
	recs, err := h.userClient(r).PetHistory(r.Context(), id)
	if err != nil {
		h.backendError(w, "pet_history", err, "Error al cargar el historial")
		return
	}
	if recs == nil {
		recs = []backend.MedicalRecord{}
	}
	writeJSON(w, http.StatusOK, recs)
}

// PreRegister registers a pet for an owner without an account. Reception
// only; the backend emails the owner an invitation.
// POST /api/pets/pre-register
func (h *PetsHandler) PreRegister(w http.ResponseWriter, r *http.Request) {
	var req backend.PreRegistration
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	req.OwnerEmail = strings.TrimSpace(req.OwnerEmail)
	if req.OwnerEmail == "" || strings.TrimSpace(req.Name) == "" {
		jsonError(w, "Correo del dueño y nombre de la mascota son obligatorios", http.StatusBadRequest)
		return
	}
	res, err := h.Backend.PreRegisterPet(r.Context(), req)
	if err != nil {
		h.backendError(w, "pre_register_pet", err, "Error al pre-registrar la mascota")
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// MedicalRecords lists the records visible to the caller.
// GET /api/medical-records
func (h *PetsHandler) MedicalRecords(w http.ResponseWriter, r *http.Request) {
	recs, err := h.userClient(r).ListMedicalRecords(r.Context())
	if err != nil {
		h.backendError(w, "list_medical_records", err, "Error al cargar fichas")
		return
	}
	if recs == nil {
		recs = []backend.MedicalRecord{}
	}
	writeJSON(w, http.StatusOK, recs)
}

// CreateMedicalRecord stores a visit entry. Veterinarians only.
// POST /api/medical-records
func (h *PetsHandler) CreateMedicalRecord(w http.ResponseWriter, r *http.Request) {
	var rec backend.MedicalRecord
	if err := decodeJSON(r, &rec); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if rec.Pet <= 0 || strings.TrimSpace(rec.Diagnosis) == "" {
		jsonError(w, "Mascota y diagnóstico son obligatorios", http.StatusBadRequest)
		return
	}
	if user := h.user(r); user != nil && rec.Veterinarian == 0 {
		rec.Veterinarian = user.ID
	}
	out, err := h.userClient(r).CreateMedicalRecord(r.Context(), rec)
	if err != nil {
		h.backendError(w, "create_medical_record", err, "Error al guardar la ficha")
		return
	}
	writeJSON(w, http.StatusCreated, out)
}
