package studio

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/inamate/easel/internal/auth"
	"github.com/inamate/easel/internal/store"
	"github.com/inamate/easel/internal/typeid"
)

var (
	ErrNotFound  = errors.New("studio not found")
	ErrForbidden = errors.New("forbidden")
)

// Queries is the subset of store.Queries the service needs.
type Queries interface {
	CreateStudio(ctx context.Context, arg store.CreateStudioParams) (store.Studio, error)
	GetStudio(ctx context.Context, id string) (store.Studio, error)
	ListStudiosForOwner(ctx context.Context, ownerID string) ([]store.Studio, error)
	DeleteStudio(ctx context.Context, id string) error
	ListOpcodes(ctx context.Context, studioID string) ([]string, error)
}

// TokenIssuer signs studio tokens.
type TokenIssuer interface {
	IssueStudioToken(studioID, userID, role string) (string, error)
}

type Service struct {
	queries Queries
	tokens  TokenIssuer
}

func NewService(queries Queries, tokens TokenIssuer) *Service {
	return &Service{queries: queries, tokens: tokens}
}

type Studio struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	OwnerID   string `json:"ownerId"`
	Protected bool   `json:"protected"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func (s *Service) Create(ctx context.Context, name, ownerID, passphrase string) (*Studio, error) {
	hash, err := auth.HashPassphrase(passphrase)
	if err != nil {
		return nil, err
	}

	st, err := s.queries.CreateStudio(ctx, store.CreateStudioParams{
		ID:         typeid.NewStudioID(),
		Name:       name,
		OwnerID:    ownerID,
		Passphrase: hash,
	})
	if err != nil {
		return nil, fmt.Errorf("create studio: %w", err)
	}
	return toStudio(st), nil
}

func (s *Service) Get(ctx context.Context, studioID string) (*Studio, error) {
	st, err := s.get(ctx, studioID)
	if err != nil {
		return nil, err
	}
	return toStudio(st), nil
}

func (s *Service) List(ctx context.Context, ownerID string) ([]Studio, error) {
	rows, err := s.queries.ListStudiosForOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list studios: %w", err)
	}

	studios := make([]Studio, len(rows))
	for i, st := range rows {
		studios[i] = *toStudio(st)
	}
	return studios, nil
}

func (s *Service) Delete(ctx context.Context, studioID, userID string) error {
	st, err := s.get(ctx, studioID)
	if err != nil {
		return err
	}
	if st.OwnerID != userID {
		return ErrForbidden
	}
	return s.queries.DeleteStudio(ctx, studioID)
}

// Host issues a host token for studioID. The owner needs no passphrase;
// anyone else must present the studio's passphrase, and open studios accept
// only their owner as host.
func (s *Service) Host(ctx context.Context, studioID, userID, passphrase string) (string, error) {
	st, err := s.get(ctx, studioID)
	if err != nil {
		return "", err
	}
	if st.OwnerID != userID {
		if st.Passphrase == "" || !auth.CheckPassphrase(st.Passphrase, passphrase) {
			return "", ErrForbidden
		}
	}
	return s.tokens.IssueStudioToken(studioID, userID, auth.RoleHost)
}

// Opcodes returns the persisted opcode log of a studio.
func (s *Service) Opcodes(ctx context.Context, studioID string) ([]string, error) {
	if _, err := s.get(ctx, studioID); err != nil {
		return nil, err
	}
	ops, err := s.queries.ListOpcodes(ctx, studioID)
	if err != nil {
		return nil, fmt.Errorf("list opcodes: %w", err)
	}
	return ops, nil
}

func (s *Service) get(ctx context.Context, studioID string) (store.Studio, error) {
	st, err := s.queries.GetStudio(ctx, studioID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.Studio{}, ErrNotFound
		}
		return store.Studio{}, fmt.Errorf("get studio: %w", err)
	}
	return st, nil
}

func toStudio(st store.Studio) *Studio {
	return &Studio{
		ID:        st.ID,
		Name:      st.Name,
		OwnerID:   st.OwnerID,
		Protected: st.Passphrase != "",
		CreatedAt: st.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: st.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
