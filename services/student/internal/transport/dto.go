package transport

type GuardianRequest struct {
	Relationship string `json:"relationship"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	PhoneNumber  string `json:"phoneNumber"`
	Email        string `json:"email"`
	Occupation   string `json:"occupation"`
}

type CreateStudentRequest struct {
	Email           string `json:"email"`
	Surname         string `json:"surname"`
	FirstName       string `json:"firstName"`
	MiddleNames     string `json:"middleNames"`
	Gender          string `json:"gender"`
	DateOfBirth     string `json:"dateOfBirth"` // 2006-01-02
	ClassAppliedFor string `json:"classAppliedFor"`
	PreviousSchool  string `json:"previousSchool"`

	ResidentialAddress string `json:"residentialAddress"`
	Nationality        string `json:"nationality"`
	BloodGroup         string `json:"bloodGroup"`
	LivesWith          string `json:"livesWith"`

	Guardians []GuardianRequest `json:"guardians"`
}

// UpdateStudentRequest uses pointers so PATCH can distinguish "absent" from
// "set to zero value". A non-nil Guardians slice replaces the whole set.
type UpdateStudentRequest struct {
	Email           *string `json:"email"`
	Surname         *string `json:"surname"`
	FirstName       *string `json:"firstName"`
	MiddleNames     *string `json:"middleNames"`
	ClassAdmittedTo *string `json:"classAdmittedTo"`
	PreviousSchool  *string `json:"previousSchool"`

	ResidentialAddress *string `json:"residentialAddress"`
	Nationality        *string `json:"nationality"`
	BloodGroup         *string `json:"bloodGroup"`
	LivesWith          *string `json:"livesWith"`

	Active *bool `json:"active"`

	Guardians []GuardianRequest `json:"guardians"`
}
