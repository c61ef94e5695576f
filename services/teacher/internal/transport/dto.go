package transport

type RegisterTeacherRequest struct {
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	Email       string   `json:"email"`
	PhoneNumber string   `json:"phone_number"`
	Subjects    []string `json:"subjects"`
}

// UpdateTeacherRequest carries only the fields the caller wants changed.
type UpdateTeacherRequest struct {
	Title       *string   `json:"title"`
	FirstName   *string   `json:"first_name"`
	LastName    *string   `json:"last_name"`
	Email       *string   `json:"email"`
	PhoneNumber *string   `json:"phone_number"`
	Address     *string   `json:"address"`
	City        *string   `json:"city"`
	State       *string   `json:"state"`
	Country     *string   `json:"country"`
	PostalCode  *string   `json:"postal_code"`
	Subjects    *[]string `json:"subjects"`
	Active      *bool     `json:"active"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
