// Package v1 holds types referenced across packages.
package v1

// Account is owned by a user.
type Account struct {
	Number string `json:"number"`
}
