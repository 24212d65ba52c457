package domain

// VerifiedClaims são as claims já validadas pela camada de token, mais o IP remoto da requisição.
type VerifiedClaims struct {
	Subject  string
	Role     UserRole
	RemoteIP string
}

// Identity é o "usuário atual" de uma requisição. É um snapshot imutável: o User
// é copiado na construção e nunca exposto por ponteiro.
type Identity struct {
	user *User
}

// Anonymous devolve a identidade de uma requisição sem token.
func Anonymous() Identity {
	return Identity{}
}

func NewIdentity(u User) Identity {
	snapshot := u
	return Identity{user: &snapshot}
}

func (i Identity) Authenticated() bool {
	return i.user != nil
}

// User devolve uma cópia do usuário autenticado.
func (i Identity) User() (User, bool) {
	if i.user == nil {
		return User{}, false
	}
	return *i.user, true
}

func (i Identity) UserID() uint64 {
	if i.user == nil {
		return 0
	}
	return i.user.ID
}

func (i Identity) Role() UserRole {
	if i.user == nil {
		return ""
	}
	return i.user.Role
}

func (i Identity) IsAdmin() bool {
	return i.Role() == RoleAdmin
}

func (i Identity) HasRole(roles ...UserRole) bool {
	if i.user == nil {
		return false
	}
	for _, r := range roles {
		if i.user.Role == r {
			return true
		}
	}
	return false
}

// CheckSameID é verdadeiro se a identidade for dona de targetUserID ou,
// com includeAdminAsOwner, se for admin.
func (i Identity) CheckSameID(targetUserID uint64, includeAdminAsOwner bool) bool {
	if i.user == nil {
		return false
	}
	if i.user.ID == targetUserID {
		return true
	}
	return includeAdminAsOwner && i.IsAdmin()
}
