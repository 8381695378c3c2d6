package domain

import "time"

// User represents a user of the application. BaseCurrency is the currency
// operations are optionally revalued in.
type User struct {
	UserID       EntityID     `json:"userID"`
	Name         UserName     `json:"name"`
	Email        Email        `json:"email"`
	PasswordHash string       `json:"-"`
	BaseCurrency CurrencyCode `json:"baseCurrency"`
	SoftDelete   SoftDelete
	AuditFields
}

// CreateUser builds a new user with a fresh identifier. Name, email and
// base currency are expected to be already-validated value objects; the
// password hash comes from the auth boundary.
func CreateUser(name UserName, email Email, passwordHash string, baseCurrency CurrencyCode, now time.Time) User {
	return User{
		UserID:       NewEntityID(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		BaseCurrency: baseCurrency,
		SoftDelete:   NewSoftDelete(),
		AuditFields:  NewAuditFields(now),
	}
}

// MarkDeleted tombstones the user, returning the new state.
func (u User) MarkDeleted(now time.Time) (User, error) {
	if err := u.SoftDelete.ValidateUpdateAllowed(); err != nil {
		return User{}, err
	}
	u.SoftDelete = u.SoftDelete.MarkDeleted(now)
	u.AuditFields = u.AuditFields.Touched(now)
	return u, nil
}
