// Package typeid issues the prefixed, sortable identifiers of users, studios,
// command groups and websocket clients.
package typeid

import (
	"errors"
	"fmt"

	"go.jetify.com/typeid/v2"
)

const (
	PrefixUser   = "user"
	PrefixStudio = "studio"
	PrefixGroup  = "grp"
	PrefixClient = "client"
)

// ErrPrefix is returned by Validate for a well-formed id of another kind.
var ErrPrefix = errors.New("unexpected id prefix")

func New(prefix string) string { return typeid.MustGenerate(prefix).String() }

func NewUserID() string   { return New(PrefixUser) }
func NewStudioID() string { return New(PrefixStudio) }
func NewGroupID() string  { return New(PrefixGroup) }
func NewClientID() string { return New(PrefixClient) }

// Validate checks that id parses and carries prefix.
func Validate(id, prefix string) error {
	parsed, err := typeid.Parse(id)
	if err != nil {
		return fmt.Errorf("parse id %q: %w", id, err)
	}
	if got := parsed.Prefix(); got != prefix {
		return fmt.Errorf("id %q has prefix %q, want %q: %w", id, got, prefix, ErrPrefix)
	}
	return nil
}
