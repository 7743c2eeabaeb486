// Package repository provides data access to the MySQL tables backing
// the marketplace.  Repositories are thin structs over *sql.DB; methods
// with a Tx suffix run inside a caller-owned transaction so that the
// negotiation core can group reads and conditional writes into one
// atomic unit.  Sentinel errors defined here let higher layers
// distinguish failure scenarios without inspecting driver errors.
package repository

import (
    "errors"
    "strings"
)

// ErrDuplicate is returned when an insert violates a unique key, such
// as a second draft referencing the same property or a second lease
// referencing the same draft.
var ErrDuplicate = errors.New("duplicate record")

// ErrEmailExists is returned by UserRepo.Create when the email is taken.
var ErrEmailExists = errors.New("email already exists")

// isDuplicateKey reports whether err is a MySQL duplicate-entry error
// (code 1062).  The driver does not expose a typed error for it.
func isDuplicateKey(err error) bool {
    return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
