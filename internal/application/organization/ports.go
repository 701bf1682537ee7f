package organization

import (
	"context"

	"github.com/jhoicas/crm-api/internal/domain/repository"
)

// InviteTxRunner ejecuta la aceptación de una invitación en una sola transacción:
// marcar la invitación y crear la membresía se confirman juntos o no se confirman.
type InviteTxRunner interface {
	RunInvite(ctx context.Context, fn func(
		invites repository.InviteRepository,
		memberships repository.MembershipRepository,
	) error) error
}
