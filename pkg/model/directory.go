package model

// Room is owned by the room directory collaborator; the scheduler only
// reads it by id.
type Room struct {
	ID       string `json:"id" bson:"_id"`
	Name     string `json:"name" bson:"name"`
	Building string `json:"building" bson:"building"`
	Type     string `json:"type" bson:"type"`
}

// Cleaner is owned by the staff roster collaborator.
type Cleaner struct {
	ID        string `json:"id" bson:"_id"`
	FirstName string `json:"first_name" bson:"first_name"`
	LastName  string `json:"last_name" bson:"last_name"`
}

func (c Cleaner) FullName() string {
	if c.FirstName == "" {
		return c.LastName
	}
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

// Principal is the identity service's answer to a bearer token check.
type Principal struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Roles []string `json:"roles"`
}
