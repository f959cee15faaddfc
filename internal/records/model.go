package records

// Record is one employee row.
type Record struct {
	ID        string
	FirstName string
	LastName  string
	Role      string
	Salary    string
	// PDF is the object key of the scanned ID document.
	PDF string
}

// Fields are the user-editable attributes of a record.
type Fields struct {
	FirstName string
	LastName  string
	Role      string
	Salary    string
}

// Fields returns the editable part of r.
func (r Record) Fields() Fields {
	return Fields{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Role:      r.Role,
		Salary:    r.Salary,
	}
}

func (r Record) withFields(f Fields) Record {
	r.FirstName = f.FirstName
	r.LastName = f.LastName
	r.Role = f.Role
	r.Salary = f.Salary
	return r
}
