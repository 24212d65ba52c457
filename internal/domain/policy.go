package domain

// Policy associa um nome a um conjunto de roles que podem acessar um endpoint.
type Policy struct {
	Name  string
	Roles []UserRole
}

var (
	AdminPolicy = Policy{Name: "admin", Roles: []UserRole{RoleAdmin}}
	UserPolicy  = Policy{Name: "user", Roles: []UserRole{RoleUser}}
	// AuthPolicy aceita qualquer principal autenticado.
	AuthPolicy = Policy{Name: "auth", Roles: []UserRole{RoleAdmin, RoleUser}}
)

func (p Policy) Allows(role UserRole) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}
