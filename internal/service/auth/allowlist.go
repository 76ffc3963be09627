package auth

import (
	"context"
	"fmt"

	"SignalHub/internal/domain/models"
	"SignalHub/internal/domain/repository"
)

// Allowlist authorizes publishing by principal id. An empty list allows
// everyone, which is the expected shape when an upstream gateway already
// enforces operator roles.
type Allowlist struct {
	allowed map[string]struct{}
}

func New(operators []string) repository.Authorizer {
	m := make(map[string]struct{}, len(operators))
	for _, op := range operators {
		m[op] = struct{}{}
	}
	return &Allowlist{allowed: m}
}

func (a *Allowlist) CanPublish(ctx context.Context, p models.Principal) error {
	if p.ID == "" {
		return fmt.Errorf("missing principal")
	}
	if len(a.allowed) == 0 {
		return nil
	}
	if _, ok := a.allowed[p.ID]; !ok {
		return fmt.Errorf("principal %s not in operator allowlist", p.ID)
	}
	return nil
}
