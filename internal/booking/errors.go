package booking

import "errors"

var (
	ErrServiceRequired      = errors.New("booking: seleccione un área y un servicio")
	ErrUnknownService       = errors.New("booking: servicio no disponible")
	ErrVeterinarianRequired = errors.New("booking: seleccione un veterinario")
	ErrDateRequired         = errors.New("booking: seleccione una fecha")
	ErrDateNotSelectable    = errors.New("booking: la fecha seleccionada no está disponible")
	ErrSlotRequired         = errors.New("booking: seleccione una fecha y horario")
	ErrSlotNotAvailable     = errors.New("booking: el horario seleccionado no está disponible")
	ErrNotAuthenticated     = errors.New("booking: inicie sesión o regístrese antes de continuar")
	ErrRoleCannotBook       = errors.New("booking: los veterinarios no pueden agendar citas")
	ErrPetRequired          = errors.New("booking: seleccione una mascota")
	ErrPetNotOwned          = errors.New("booking: la mascota no pertenece al cliente")
	ErrNoAlternatives       = errors.New("booking: no hay veterinarios alternativos")
	ErrUnknownAlternative   = errors.New("booking: veterinario alternativo no ofrecido")
	ErrWrongStep            = errors.New("booking: acción no permitida en este paso")
	ErrAlreadyConfirmed     = errors.New("booking: la reserva ya fue confirmada")
	ErrNotFound             = errors.New("booking: session not found")
)

var wizardErrors = []error{
	ErrServiceRequired, ErrUnknownService, ErrVeterinarianRequired, ErrDateRequired,
	ErrDateNotSelectable, ErrSlotRequired, ErrSlotNotAvailable, ErrNotAuthenticated,
	ErrRoleCannotBook, ErrPetRequired, ErrPetNotOwned, ErrNoAlternatives,
	ErrUnknownAlternative, ErrWrongStep, ErrAlreadyConfirmed,
}
