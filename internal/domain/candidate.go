package domain

// Candidate es un perfil de demostracion con datos de presentacion.
// El scorer solo consume Profile.
type Candidate struct {
	ID      int     `json:"id"`
	Name    string  `json:"name"`
	Age     int     `json:"age"`
	Role    string  `json:"role"`
	City    string  `json:"city"`
	Profile Profile `json:"profile"`
}
